package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcs_MakeEcs(t *testing.T) {
	ecs := MakeEcs()

	assert.Empty(t, ecs.archetypes)
	assert.Equal(t, 0, ecs.entityCount())
	assert.Equal(t, EntityId(0), ecs.entityIdCounter)
}

func TestEcs_AddEntity(t *testing.T) {
	ecs := MakeEcs()

	a := ecs.addEntity(&position{X: 1}, &velocity{Y: 2})
	b := ecs.addEntity(position{X: 3})

	assert.NotEqual(t, a, b)
	assert.True(t, ecs.hasEntity(a))
	assert.True(t, ecs.hasEntity(b))
	assert.Equal(t, 2, ecs.entityCount())
	assert.Len(t, ecs.archetypes, 2)

	pos := ecs.componentPtr(a, typeOf[position]())
	require.True(t, pos.IsValid())
	assert.Equal(t, float32(1), pos.Interface().(*position).X)
}

func TestEcs_AddEntity_panicsOnNonStruct(t *testing.T) {
	ecs := MakeEcs()
	assert.Panics(t, func() {
		ecs.addEntity(42)
	})
}

func TestEcs_RemoveEntity(t *testing.T) {
	ecs := MakeEcs()

	a := ecs.addEntity(&position{X: 1})
	b := ecs.addEntity(&position{X: 2})
	ecs.removeEntity(a)
	ecs.removeEntity(a)

	assert.False(t, ecs.hasEntity(a))
	assert.True(t, ecs.hasEntity(b))
	assert.Equal(t, 1, ecs.entityCount())

	// The freed row is reused and starts from a clean slate.
	c := ecs.addEntity(&position{X: 3})
	arch := ecs.archetypes[ecs.mustArchetype(t, c)]
	assert.Len(t, arch.recycled, 0)
	assert.Equal(t, float32(3), ecs.componentPtr(c, typeOf[position]()).Interface().(*position).X)
}

func TestEcs_AddComponents(t *testing.T) {
	ecs := MakeEcs()

	eid := ecs.addEntity(&position{X: 1})
	before := ecs.mustArchetype(t, eid)

	ecs.addComponents(eid, &velocity{Z: 5})
	after := ecs.mustArchetype(t, eid)
	assert.NotEqual(t, before, after)
	assert.Equal(t, float32(1), ecs.componentPtr(eid, typeOf[position]()).Interface().(*position).X)
	assert.Equal(t, float32(5), ecs.componentPtr(eid, typeOf[velocity]()).Interface().(*velocity).Z)

	// Same shape overwrites in place.
	ecs.addComponents(eid, &position{X: 9})
	assert.Equal(t, after, ecs.mustArchetype(t, eid))
	assert.Equal(t, float32(9), ecs.componentPtr(eid, typeOf[position]()).Interface().(*position).X)

	// Unknown entities are ignored.
	ecs.addComponents(EntityId(999), &tag{})
	assert.False(t, ecs.hasEntity(999))
}

func TestEcs_RemoveComponents(t *testing.T) {
	ecs := MakeEcs()

	eid := ecs.addEntity(&position{X: 1}, &velocity{X: 2}, &tag{})
	ecs.removeComponents(eid, &velocity{}, tag{})

	assert.True(t, ecs.hasEntity(eid))
	assert.True(t, ecs.componentPtr(eid, typeOf[position]()).IsValid())
	assert.False(t, ecs.componentPtr(eid, typeOf[velocity]()).IsValid())
	assert.False(t, ecs.componentPtr(eid, typeOf[tag]()).IsValid())

	// Removing something the entity does not have keeps it where it is.
	archId := ecs.mustArchetype(t, eid)
	ecs.removeComponents(eid, &velocity{})
	assert.Equal(t, archId, ecs.mustArchetype(t, eid))
}

func TestEcs_ArchetypeKeyIsOrderIndependent(t *testing.T) {
	ecs := MakeEcs()

	a := ecs.addEntity(&position{}, &velocity{})
	b := ecs.addEntity(&velocity{}, &position{})

	assert.Equal(t, ecs.mustArchetype(t, a), ecs.mustArchetype(t, b))
}

func (ecs *Ecs) mustArchetype(t *testing.T, eid EntityId) archetypeId {
	t.Helper()
	id, ok := ecs.entityIndex.Get(eid)
	require.True(t, ok, "entity %v has no archetype", eid)
	return id
}
