package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_MatchesEveryArchetype(t *testing.T) {
	cmd := newTestCommands()
	a := cmd.AddEntity(&position{X: 1})
	b := cmd.AddEntity(&position{X: 2}, &velocity{X: 1})
	cmd.AddEntity(&velocity{X: 3})
	cmd.app.FlushCommands()

	seen := map[EntityId]float32{}
	MakeQuery1[position](cmd).Map(func(eid EntityId, p *position) bool {
		seen[eid] = p.X
		return true
	})
	assert.Equal(t, map[EntityId]float32{a: 1, b: 2}, seen)

	count := 0
	MakeQuery2[position, velocity](cmd).Map(func(eid EntityId, p *position, v *velocity) bool {
		assert.Equal(t, b, eid)
		count++
		return true
	})
	assert.Equal(t, 1, count)
}

func TestQuery_WritesThroughPointers(t *testing.T) {
	cmd := newTestCommands()
	eid := cmd.AddEntity(&position{}, &velocity{X: 2, Y: 3})
	cmd.app.FlushCommands()

	MakeQuery2[position, velocity](cmd).Map(func(_ EntityId, p *position, v *velocity) bool {
		p.X += v.X
		p.Y += v.Y
		return true
	})

	p := GetComponent[position](cmd, eid)
	require.NotNil(t, p)
	assert.Equal(t, position{X: 2, Y: 3}, *p)
}

func TestQuery_Optionals(t *testing.T) {
	cmd := newTestCommands()
	with := cmd.AddEntity(&position{X: 1}, &velocity{X: 5})
	without := cmd.AddEntity(&position{X: 2})
	cmd.app.FlushCommands()

	got := map[EntityId]bool{}
	MakeQuery2[position, velocity](cmd).Map(func(eid EntityId, p *position, v *velocity) bool {
		got[eid] = v != nil
		return true
	}, velocity{})

	assert.Equal(t, map[EntityId]bool{with: true, without: false}, got)
}

func TestQuery_StopsEarly(t *testing.T) {
	cmd := newTestCommands()
	for i := 0; i < 5; i++ {
		cmd.AddEntity(&position{X: float32(i)})
	}
	cmd.app.FlushCommands()

	visited := 0
	MakeQuery1[position](cmd).Map(func(EntityId, *position) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestQuery4(t *testing.T) {
	type mass struct{ M float32 }

	cmd := newTestCommands()
	eid := cmd.AddEntity(&position{}, &velocity{}, &tag{}, &mass{M: 4})
	cmd.AddEntity(&position{}, &velocity{}, &tag{})
	cmd.app.FlushCommands()

	var found []EntityId
	MakeQuery4[position, velocity, tag, mass](cmd).Map(func(id EntityId, _ *position, _ *velocity, _ *tag, m *mass) bool {
		assert.Equal(t, float32(4), m.M)
		found = append(found, id)
		return true
	})
	assert.Equal(t, []EntityId{eid}, found)
}

func TestGetComponent(t *testing.T) {
	cmd := newTestCommands()
	eid := cmd.AddEntity(&position{X: 7})

	assert.Nil(t, GetComponent[position](cmd, eid), "not flushed yet")
	cmd.app.FlushCommands()

	require.NotNil(t, GetComponent[position](cmd, eid))
	assert.Equal(t, float32(7), GetComponent[position](cmd, eid).X)
	assert.Nil(t, GetComponent[velocity](cmd, eid))
	assert.Nil(t, GetComponent[position](cmd, EntityId(12345)))
	assert.True(t, HasComponent[position](cmd, eid))
	assert.False(t, HasComponent[tag](cmd, eid))
}
