package arena

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FlyingCameraModule drives free-flying spectator cameras.
type FlyingCameraModule struct{}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(FlyingCameraInputSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(FlyingCameraControlSystem).
			InStage(Update).
			RunAlways(),
	)
}

type FlyingCameraComponent struct {
	Speed       float32
	Sensitivity float32
	Move        mgl32.Vec3
	Look        mgl32.Vec2
}

func FlyingCameraInputSystem(input *Input, cmd *Commands) {
	MakeQuery1[FlyingCameraComponent](cmd).Map(func(eid EntityId, fly *FlyingCameraComponent) bool {
		axis := func(pos, neg Key) float32 {
			var v float32
			if input.Pressed(pos) {
				v++
			}
			if input.Pressed(neg) {
				v--
			}
			return v
		}
		fly.Move = mgl32.Vec3{axis(KeyD, KeyA), axis(KeySpace, KeyControl), axis(KeyW, KeyS)}

		if input.MouseCaptured {
			fly.Look = mgl32.Vec2{float32(input.MouseDeltaX), float32(input.MouseDeltaY)}
		} else {
			fly.Look = mgl32.Vec2{}
		}
		return true
	})
}

func FlyingCameraControlSystem(cmd *Commands, time *Time) {
	dt := time.DeltaSeconds()
	if dt <= 0 {
		return
	}

	MakeQuery2[CameraComponent, FlyingCameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent, fly *FlyingCameraComponent) bool {
		sensitivity := fly.Sensitivity
		if sensitivity == 0 {
			sensitivity = 0.1
		}
		cam.Yaw += fly.Look[0] * sensitivity
		cam.Pitch = mgl32.Clamp(cam.Pitch-fly.Look[1]*sensitivity, -89, 89)

		forward := directionFromYawPitch(cam.Yaw, cam.Pitch)
		right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
		up := mgl32.Vec3{0, 1, 0}

		speed := fly.Speed
		if speed == 0 {
			speed = 5.0
		}
		move := right.Mul(fly.Move[0]).Add(up.Mul(fly.Move[1])).Add(forward.Mul(fly.Move[2]))
		if move.Len() > 0 {
			cam.Position = cam.Position.Add(move.Normalize().Mul(speed * dt))
		}

		cam.LookAt = cam.Position.Add(forward)
		cam.Up = up
		return true
	})
}

// directionFromYawPitch converts degrees to a unit view direction; yaw 0, pitch 0 is -Z.
func directionFromYawPitch(yaw, pitch float32) mgl32.Vec3 {
	yawRad := float64(mgl32.DegToRad(yaw))
	pitchRad := float64(mgl32.DegToRad(pitch))
	return mgl32.Vec3{
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(-math.Cos(yawRad) * math.Cos(pitchRad)),
	}.Normalize()
}
