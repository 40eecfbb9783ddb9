// Package player spawns and drives the first-person player: a capsule body that walks on
// the environment colliders with a camera child at eye height.
package player

import (
	"github.com/gekko3d/arena"
	"github.com/gekko3d/arena/game"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultSpeed       = 5.0
	DefaultJumpSpeed   = 5.0
	DefaultSensitivity = 0.1

	capsuleHalfHeight = 0.5
	capsuleRadius     = 0.4
	maxPitch          = 89.0
)

// Player sits on the root entity. Yaw is in degrees; 0 looks down -Z.
type Player struct {
	Speed       float32
	JumpSpeed   float32
	Sensitivity float32
	Yaw         float32
	Camera      arena.EntityId
}

// PlayerCamera sits on the camera child. Pitch is in degrees.
type PlayerCamera struct {
	Player arena.EntityId
	Pitch  float32
}

// SpawnPlayerCmd spawns the player at Transform with its camera raised by CamOffset.
type SpawnPlayerCmd struct {
	Transform arena.TransformComponent
	CamOffset mgl32.Vec3
}

func (c SpawnPlayerCmd) Apply(cmd *arena.Commands) {
	tr := c.Transform
	if tr.Rotation.Len() < 1e-6 {
		tr.Rotation = mgl32.QuatIdent()
	}
	if tr.Scale == (mgl32.Vec3{}) {
		tr.Scale = mgl32.Vec3{1, 1, 1}
	}

	body := arena.DynamicBody(1)
	body.LockRotation = true
	collider := arena.CapsuleCollider(capsuleHalfHeight, capsuleRadius)
	groups := arena.NewCollisionGroups(game.LayerPlayers, game.LayerEnvironment)
	player := &Player{
		Speed:       DefaultSpeed,
		JumpSpeed:   DefaultJumpSpeed,
		Sensitivity: DefaultSensitivity,
	}

	eid := cmd.AddEntity(&tr, &body, &collider, &groups, player, &arena.Name{Value: "player"})

	camera := arena.NewCamera()
	camWorld := arena.TransformFromTranslation(tr.Position.Add(tr.Rotation.Rotate(c.CamOffset)))
	camera.Position = camWorld.Position
	camera.LookAt = camWorld.Position.Add(tr.Forward())

	components := arena.TransformBundle(arena.TransformFromTranslation(c.CamOffset))
	components[1] = &camWorld
	components = append(components, &camera, &PlayerCamera{Player: eid}, &arena.Name{Value: "player-camera"})

	// Spawns are inserted on the next flush pass, so the id can still be written into player.
	player.Camera = cmd.SpawnChild(eid, components...)
	cmd.Logger().Debugf("spawned player %v with camera %v at %v", eid, player.Camera, tr.Position)
}

// Module installs the player systems. They only run InGame.
type Module struct{}

func (Module) Install(app *arena.App, cmd *arena.Commands) {
	app.UseSystem(
		arena.System(LookSystem).
			InStage(arena.Update).
			InState(arena.OnExecute(game.InGame)),
	)
	app.UseSystem(
		arena.System(ControllerSystem).
			InStage(arena.Update).
			InState(arena.OnExecute(game.InGame)),
	)
	app.UseSystem(
		arena.System(CameraSyncSystem).
			InStage(arena.PostUpdate).
			InState(arena.OnExecute(game.InGame)),
	)
}

// ControllerSystem maps WASD to horizontal velocity relative to the player's yaw and
// Space to a jump while grounded. Vertical velocity is left to physics otherwise.
func ControllerSystem(cmd *arena.Commands, input *arena.Input) {
	arena.MakeQuery3[Player, arena.TransformComponent, arena.RigidBodyComponent](cmd).Map(
		func(eid arena.EntityId, p *Player, tr *arena.TransformComponent, rb *arena.RigidBodyComponent) bool {
			forward := flatten(tr.Forward())
			right := flatten(tr.Right())

			var move mgl32.Vec3
			if input.Pressed(arena.KeyW) {
				move = move.Add(forward)
			}
			if input.Pressed(arena.KeyS) {
				move = move.Sub(forward)
			}
			if input.Pressed(arena.KeyD) {
				move = move.Add(right)
			}
			if input.Pressed(arena.KeyA) {
				move = move.Sub(right)
			}
			if move.Len() > 1e-6 {
				move = move.Normalize().Mul(p.Speed)
			}
			rb.Velocity = mgl32.Vec3{move.X(), rb.Velocity.Y(), move.Z()}

			if input.JustPressed(arena.KeySpace) && rb.Grounded {
				rb.Velocity[1] = p.JumpSpeed
				rb.Grounded = false
			}
			return true
		})
}

// LookSystem turns the player with the mouse while it is captured. Tab toggles the capture
// and Escape releases it.
func LookSystem(cmd *arena.Commands, input *arena.Input) {
	if input.JustPressed(arena.KeyTab) {
		input.MouseCaptured = !input.MouseCaptured
	}
	if input.JustPressed(arena.KeyEscape) {
		input.MouseCaptured = false
	}
	if !input.MouseCaptured {
		return
	}
	dx, dy := float32(input.MouseDeltaX), float32(input.MouseDeltaY)
	if dx == 0 && dy == 0 {
		return
	}

	arena.MakeQuery2[Player, arena.TransformComponent](cmd).Map(func(eid arena.EntityId, p *Player, tr *arena.TransformComponent) bool {
		p.Yaw -= dx * p.Sensitivity
		tr.Rotation = arena.YawRotation(mgl32.DegToRad(p.Yaw))

		pc := arena.GetComponent[PlayerCamera](cmd, p.Camera)
		local := arena.GetComponent[arena.LocalTransformComponent](cmd, p.Camera)
		if pc == nil || local == nil {
			return true
		}
		pc.Pitch = mgl32.Clamp(pc.Pitch-dy*p.Sensitivity, -maxPitch, maxPitch)
		local.Rotation = mgl32.QuatRotate(mgl32.DegToRad(pc.Pitch), mgl32.Vec3{1, 0, 0})
		return true
	})
}

// CameraSyncSystem copies the propagated camera pose into its CameraComponent. It runs
// after the hierarchy in PostUpdate.
func CameraSyncSystem(cmd *arena.Commands) {
	arena.MakeQuery3[PlayerCamera, arena.TransformComponent, arena.CameraComponent](cmd).Map(
		func(eid arena.EntityId, pc *PlayerCamera, tr *arena.TransformComponent, cam *arena.CameraComponent) bool {
			cam.Position = tr.Position
			cam.LookAt = tr.Position.Add(tr.Forward())
			cam.Up = tr.Up()
			cam.Pitch = pc.Pitch
			if p := arena.GetComponent[Player](cmd, pc.Player); p != nil {
				cam.Yaw = -p.Yaw
			}
			return true
		})
}

func flatten(v mgl32.Vec3) mgl32.Vec3 {
	v[1] = 0
	if v.Len() < 1e-6 {
		return mgl32.Vec3{}
	}
	return v.Normalize()
}

// SpectatorModule adds a free-flying camera that replaces the player's view.
type SpectatorModule struct{}

func (SpectatorModule) Install(app *arena.App, cmd *arena.Commands) {
	arena.FlyingCameraModule{}.Install(app, cmd)
	app.UseSystem(
		arena.System(spawnSpectator).
			InStage(arena.Update).
			InState(arena.OnEnter(game.InGame)),
	)
	app.UseSystem(
		arena.System(spectatorViewSystem).
			InStage(arena.PostUpdate).
			InState(arena.OnExecute(game.InGame)),
	)
}

func spawnSpectator(cmd *arena.Commands) {
	camera := arena.NewCamera()
	camera.Position = mgl32.Vec3{0, 3, 8}
	camera.LookAt = mgl32.Vec3{0, 3, 7}
	cmd.AddEntity(
		&camera,
		&arena.FlyingCameraComponent{Speed: 10, Sensitivity: DefaultSensitivity},
		&arena.Name{Value: "spectator"},
	)
}

func spectatorViewSystem(cmd *arena.Commands) {
	arena.MakeQuery2[PlayerCamera, arena.CameraComponent](cmd).Map(func(eid arena.EntityId, _ *PlayerCamera, cam *arena.CameraComponent) bool {
		cam.Active = false
		return true
	})
}
