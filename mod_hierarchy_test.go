package arena

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformHierarchy(t *testing.T) {
	app := NewAppBuilder().UseModule(HierarchyModule{}).Build()
	cmd := app.Commands()

	parent := cmd.AddEntity(&TransformComponent{
		Position: mgl32.Vec3{10, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	child := cmd.SpawnChild(parent, TransformBundle(TransformFromTranslation(mgl32.Vec3{0, 5, 0}))...)
	grandchild := cmd.SpawnChild(child, TransformBundle(TransformFromTranslation(mgl32.Vec3{0, 0, 2}))...)
	app.FlushCommands()

	TransformHierarchySystem(cmd)

	childTr := GetComponent[TransformComponent](cmd, child)
	grandTr := GetComponent[TransformComponent](cmd, grandchild)
	require.NotNil(t, childTr)
	require.NotNil(t, grandTr)
	assert.True(t, vecNear(childTr.Position, mgl32.Vec3{10, 5, 0}, 1e-5), "child %v", childTr.Position)
	assert.True(t, vecNear(grandTr.Position, mgl32.Vec3{10, 5, 2}, 1e-5), "grandchild %v", grandTr.Position)

	// Moving the parent moves the whole chain on the next update.
	GetComponent[TransformComponent](cmd, parent).Position = mgl32.Vec3{0, 1, 0}
	app.Update()
	assert.True(t, vecNear(GetComponent[TransformComponent](cmd, grandchild).Position, mgl32.Vec3{0, 6, 2}, 1e-5))
}

func TestTransformHierarchy_rotationAndScale(t *testing.T) {
	cmd := newTestCommands()

	parent := cmd.AddEntity(&TransformComponent{
		Position: mgl32.Vec3{0, 1, 0},
		Rotation: YawRotation(math.Pi / 2),
		Scale:    mgl32.Vec3{2, 2, 2},
	})
	child := cmd.SpawnChild(parent, TransformBundle(TransformFromTranslation(mgl32.Vec3{0, 0, -1}))...)
	cmd.app.FlushCommands()

	TransformHierarchySystem(cmd)

	world := GetComponent[TransformComponent](cmd, child)
	require.NotNil(t, world)
	// Parent looks down -X after a quarter turn; the child sits 2 units ahead of it.
	assert.True(t, vecNear(world.Position, mgl32.Vec3{-2, 1, 0}, 1e-5), "got %v", world.Position)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, world.Scale)
	assert.True(t, vecNear(world.Forward(), mgl32.Vec3{-1, 0, 0}, 1e-5))
}

func TestTransformHierarchy_orphanKeepsPose(t *testing.T) {
	cmd := newTestCommands()

	child := cmd.AddEntity(append(
		TransformBundle(TransformFromTranslation(mgl32.Vec3{1, 2, 3})),
		&Parent{Entity: EntityId(4242)},
	)...)
	cmd.app.FlushCommands()

	TransformHierarchySystem(cmd)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, GetComponent[TransformComponent](cmd, child).Position)
}

func TestTransformBundle(t *testing.T) {
	local := TransformFromTranslation(mgl32.Vec3{0, 1, 0})
	bundle := TransformBundle(local)

	require.Len(t, bundle, 2)
	assert.Equal(t, LocalFrom(local), *bundle[0].(*LocalTransformComponent))
	assert.Equal(t, local, *bundle[1].(*TransformComponent))
}
