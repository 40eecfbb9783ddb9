package arena

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraComponent is a perspective camera. Yaw and Pitch are degrees; Yaw 0 looks down -Z.
type CameraComponent struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Fov      float32
	Near     float32
	Far      float32
	Active   bool
}

func NewCamera() CameraComponent {
	return CameraComponent{
		LookAt: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
		Fov:    60,
		Near:   0.1,
		Far:    2000,
		Active: true,
	}
}

func (cam *CameraComponent) ViewMatrix() mgl32.Mat4 {
	up := cam.Up
	if up.Len() < 1e-6 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(cam.Position, cam.LookAt, up)
}

func (cam *CameraComponent) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	fov, near, far := cam.Fov, cam.Near, cam.Far
	if fov <= 0 {
		fov = 60
	}
	if near <= 0 {
		near = 0.1
	}
	if far <= near {
		far = near + 1000
	}
	return mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far)
}

// ActiveCamera returns the first active camera, or nil.
func ActiveCamera(cmd *Commands) (EntityId, *CameraComponent) {
	var (
		found EntityId
		cam   *CameraComponent
	)
	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, c *CameraComponent) bool {
		if !c.Active {
			return true
		}
		found, cam = eid, c
		return false
	})
	return found, cam
}

// Name labels an entity for logs and scene dumps.
type Name struct {
	Value string
}
