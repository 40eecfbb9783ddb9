// Package environment builds the arena: lighting, a textured ground plane, a decorative
// cube and a wall, then hands over to the player spawn.
package environment

import (
	"fmt"
	"math"

	"github.com/gekko3d/arena"
	"github.com/gekko3d/arena/game"
	"github.com/gekko3d/arena/game/player"
	"github.com/go-gl/mathgl/mgl32"
)

// Settings describes the scene. DefaultSettings is the arena as shipped.
type Settings struct {
	AmbientColor      arena.Color
	AmbientBrightness float32

	SunColor       arena.Color
	SunIlluminance float32
	SunShadows     bool
	SunDirection   mgl32.Vec3

	GroundHalfSize float32
	// GroundUVExtent is how often the ground texture repeats from the centre to an edge.
	GroundUVExtent float32
	GroundTexture  string

	CubeHalfSize float32
	CubePosition mgl32.Vec3
	CubeYaw      float32
	CubeTexture  string

	WallHalfSize mgl32.Vec3
	WallPosition mgl32.Vec3
	WallColor    arena.Color

	PlayerTransform arena.TransformComponent
	PlayerCamOffset mgl32.Vec3
}

func DefaultSettings() Settings {
	return Settings{
		AmbientColor:      arena.White,
		AmbientBrightness: 400,

		SunColor:       arena.White,
		SunIlluminance: 1000,
		SunShadows:     true,
		SunDirection:   mgl32.Vec3{1, -1, 0},

		GroundHalfSize: 1000,
		GroundUVExtent: 500,
		GroundTexture:  "textures/Black/tex_7.png",

		CubeHalfSize: 0.5,
		CubePosition: mgl32.Vec3{0, 0.5, 0},
		CubeYaw:      math.Pi / 6,
		CubeTexture:  "textures/Green/tex_7.png",

		WallHalfSize: mgl32.Vec3{1, 10, 10},
		WallPosition: mgl32.Vec3{10, 5, 0},
		WallColor:    arena.Yellow,

		PlayerTransform: arena.NewTransform(),
		PlayerCamOffset: mgl32.Vec3{0, 1, 0},
	}
}

// Preloads lists the scene textures with the samplers Setup requests them with.
func (s Settings) Preloads() []game.Preload {
	return []game.Preload{
		{Path: s.GroundTexture, Sampler: arena.RepeatSampler()},
		{Path: s.CubeTexture, Sampler: arena.DefaultSampler()},
	}
}

// Module runs Setup once when the app enters InGame. A zero Settings means DefaultSettings.
type Module struct {
	Settings Settings
}

func (m Module) Install(app *arena.App, cmd *arena.Commands) {
	settings := m.Settings
	if settings == (Settings{}) {
		settings = DefaultSettings()
	}
	cmd.AddResources(&settings)

	app.UseSystem(
		arena.System(Setup).
			InStage(arena.Update).
			InState(arena.OnEnter(game.InGame)),
	)
}

// Setup spawns the arena. A ground half-space that cannot be built is a programming
// error and panics.
func Setup(cmd *arena.Commands, settings *Settings, assets *arena.AssetServer, ambient *arena.AmbientLight, log arena.Logger) {
	ambient.Color = settings.AmbientColor
	ambient.Brightness = settings.AmbientBrightness

	sunTransform := arena.NewTransform()
	sunTransform.LookTo(settings.SunDirection, mgl32.Vec3{0, 1, 0})
	sun := arena.DefaultDirectionalLight()
	sun.Color = settings.SunColor
	sun.Illuminance = settings.SunIlluminance
	sun.ShadowsEnabled = settings.SunShadows
	cmd.AddEntity(append(arena.DirectionalLightBundle(sun, sunTransform), &arena.Name{Value: "sun"})...)

	envGroups := arena.NewCollisionGroups(game.LayerEnvironment, game.LayerPlayers)

	groundMesh := groundPlane(settings, log)
	groundTex := assets.LoadTexture(settings.GroundTexture, arena.WithRepeat())
	groundMat := arena.TexturedMaterial(groundTex)
	groundMat.BaseColor = arena.White
	groundMat.Reflectance = 0
	groundMat.PerceptualRoughness = 1

	groundTr := arena.NewTransform()
	groundBody := arena.FixedBody()
	groundGroups := envGroups
	ground := cmd.AddEntity(
		&groundTr,
		ptr(assets.AddMesh(groundMesh)),
		ptr(assets.AddMaterial(groundMat)),
		&groundBody,
		&groundGroups,
		&arena.Name{Value: "ground"},
	)
	groundCollider := mustCollider(arena.HalfSpaceCollider(mgl32.Vec3{0, 1, 0}))
	cmd.SpawnChild(ground, append(
		arena.TransformBundle(arena.NewTransform()),
		&groundCollider,
		&arena.Name{Value: "ground-collider"},
	)...)

	cubeMat := arena.TexturedMaterial(assets.LoadTexture(settings.CubeTexture))
	cubeMat.BaseColor = arena.White
	cubeTr := arena.TransformFromTranslation(settings.CubePosition).WithRotation(arena.YawRotation(settings.CubeYaw))
	h := settings.CubeHalfSize
	cmd.AddEntity(
		&cubeTr,
		ptr(assets.AddMesh(arena.CuboidFromHalfSize(h, h, h).Mesh())),
		ptr(assets.AddMaterial(cubeMat)),
		&arena.Name{Value: "cube"},
	)

	wh := settings.WallHalfSize
	wallTr := arena.TransformFromTranslation(settings.WallPosition)
	wallBody := arena.FixedBody()
	wallGroups := envGroups
	wallCollider := arena.CuboidCollider(wh.X(), wh.Y(), wh.Z())
	cmd.AddEntity(
		&wallTr,
		ptr(assets.AddMesh(arena.CuboidFromHalfSize(wh.X(), wh.Y(), wh.Z()).Mesh())),
		ptr(assets.AddMaterial(arena.ColoredMaterial(settings.WallColor))),
		&wallBody,
		&wallGroups,
		&wallCollider,
		&arena.Name{Value: "wall"},
	)

	cmd.Add(player.SpawnPlayerCmd{
		Transform: settings.PlayerTransform,
		CamOffset: settings.PlayerCamOffset,
	})
	log.Infof("environment ready")
}

// groundPlane tiles the ground texture GroundUVExtent times from the centre outwards.
func groundPlane(settings *Settings, log arena.Logger) arena.MeshAsset {
	hs := settings.GroundHalfSize
	mesh := arena.PlaneMeshBuilder{
		HalfSize: mgl32.Vec2{hs, hs},
		Normal:   mgl32.Vec3{0, 1, 0},
	}.Build()

	e := settings.GroundUVExtent
	tiled, err := mesh.WithInsertedAttribute(arena.AttributeUV0, [][2]float32{
		{-e, -e}, {e, -e}, {e, e}, {-e, e},
	})
	if err != nil {
		log.Warnf("ground uv: %v", err)
		return mesh
	}
	return tiled
}

func mustCollider(col arena.ColliderComponent, err error) arena.ColliderComponent {
	if err != nil {
		panic(fmt.Sprintf("environment collider: %v", err))
	}
	return col
}

func ptr[T any](v T) *T {
	return &v
}
