package arena

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCamera_matrices(t *testing.T) {
	cam := NewCamera()
	cam.Position = mgl32.Vec3{0, 1, 0}
	cam.LookAt = mgl32.Vec3{0, 1, -1}

	// A point straight ahead lands on the view axis.
	p := cam.ViewMatrix().Mul4x1(mgl32.Vec4{0, 1, -5, 1})
	assert.True(t, vecNear(p.Vec3(), mgl32.Vec3{0, 0, -5}, 1e-5))

	clip := cam.ProjectionMatrix(16.0 / 9.0).Mul4x1(p)
	ndcZ := clip.Z() / clip.W()
	assert.Greater(t, ndcZ, float32(-1))
	assert.Less(t, ndcZ, float32(1))

	// Broken parameters fall back to sane values.
	broken := CameraComponent{Position: mgl32.Vec3{0, 0, 1}}
	assert.NotPanics(t, func() {
		broken.ViewMatrix()
		broken.ProjectionMatrix(1)
	})
}

func TestActiveCamera(t *testing.T) {
	cmd := newTestCommands()

	eid, cam := ActiveCamera(cmd)
	assert.Nil(t, cam)
	assert.Zero(t, eid)

	inactive := NewCamera()
	inactive.Active = false
	cmd.AddEntity(&inactive)
	active := NewCamera()
	want := cmd.AddEntity(&active)
	cmd.app.FlushCommands()

	eid, cam = ActiveCamera(cmd)
	assert.Equal(t, want, eid)
	assert.True(t, cam.Active)
}

func TestColor(t *testing.T) {
	c := RGB(0.5, 0.25, 1).Scaled(2)
	assert.Equal(t, Color{1, 0.5, 2, 1}, c)
	assert.Equal(t, [3]float32{1, 0.5, 2}, c.RGB())
}

func TestLightingModule(t *testing.T) {
	app := NewAppBuilder().UseModule(LightingModule{}).Build()
	ambient, ok := Resource[AmbientLight](app)
	assert.True(t, ok)
	assert.Equal(t, White, ambient.Color)
	assert.Equal(t, float32(DefaultAmbientBrightness), ambient.Brightness)

	light := DefaultDirectionalLight()
	bundle := DirectionalLightBundle(light, NewTransform())
	assert.Len(t, bundle, 2)
}
