package arena

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTransform_LookTo(t *testing.T) {
	tr := NewTransform()
	dir := mgl32.Vec3{1, -1, 0}
	tr.LookTo(dir, mgl32.Vec3{0, 1, 0})

	assert.True(t, vecNear(tr.Forward(), dir.Normalize(), 1e-5), "forward %v", tr.Forward())
	assert.InDelta(t, 0, tr.Right().Y(), 1e-5, "right stays horizontal")
	assert.Greater(t, tr.Up().Y(), float32(0))
	assert.InDelta(t, 1, tr.Rotation.Len(), 1e-5)
}

func TestTransform_LookTo_degenerate(t *testing.T) {
	tr := NewTransform().WithRotation(YawRotation(1))
	before := tr.Rotation

	tr.LookTo(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, before, tr.Rotation)

	tr.LookTo(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, before, tr.Rotation, "direction parallel to up")
}

func TestTransform_Mat4(t *testing.T) {
	tr := TransformFromTranslation(mgl32.Vec3{1, 2, 3}).
		WithRotation(YawRotation(math.Pi / 2)).
		WithScale(mgl32.Vec3{2, 2, 2})

	p := tr.TransformPoint(mgl32.Vec3{1, 0, 0})
	assert.True(t, vecNear(p, mgl32.Vec3{1, 2, 1}, 1e-5), "got %v", p)
}

func TestTransform_zeroValueActsAsIdentity(t *testing.T) {
	var tr TransformComponent
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, tr.Forward())
	assert.Equal(t, mgl32.Ident4(), tr.Mat4())
}

func TestYawRotation(t *testing.T) {
	tr := NewTransform().WithRotation(YawRotation(math.Pi / 6))
	f := tr.Forward()
	assert.InDelta(t, -math.Sin(math.Pi/6), f.X(), 1e-5)
	assert.InDelta(t, -math.Cos(math.Pi/6), f.Z(), 1e-5)
}

func TestVecNear_roundingOnZeroComponent(t *testing.T) {
	assert.True(t, vecNear(mgl32.Vec3{1, 0, -1.1920929e-07}, mgl32.Vec3{1, 0, 0}, 1e-5))
	assert.False(t, vecNear(mgl32.Vec3{1, 0, 1e-3}, mgl32.Vec3{1, 0, 0}, 1e-5))
}
