package environment

import (
	"context"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/arena"
	"github.com/gekko3d/arena/game"
	"github.com/gekko3d/arena/game/player"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecNear(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func writeTextures(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		f, err := os.Create(full)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))))
		require.NoError(t, f.Close())
	}
}

func startScene(t *testing.T, settings Settings) *arena.App {
	t.Helper()
	root := t.TempDir()
	writeTextures(t, root, DefaultSettings().GroundTexture, DefaultSettings().CubeTexture)

	resolved := settings
	if resolved == (Settings{}) {
		resolved = DefaultSettings()
	}
	app := arena.NewAppBuilder().
		UseStates(game.Loading, game.Exit).
		UseModule(
			arena.TimeModule{FixedDelta: time.Second / 60},
			arena.InputModule{},
			arena.AssetServerModule{Root: root},
			arena.LightingModule{},
			arena.HierarchyModule{},
			arena.PhysicsModule{},
			game.LoadingModule{Preload: resolved.Preloads()},
			Module{Settings: settings},
			player.Module{},
		).
		Build()
	app.Startup()

	assets, _ := arena.Resource[arena.AssetServer](app)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, assets.Sync(ctx))

	app.Update()
	require.Equal(t, game.InGame, app.State())
	return app
}

func byName(cmd *arena.Commands, name string) (arena.EntityId, bool) {
	var (
		found arena.EntityId
		ok    bool
	)
	arena.MakeQuery1[arena.Name](cmd).Map(func(eid arena.EntityId, n *arena.Name) bool {
		if n.Value == name {
			found, ok = eid, true
			return false
		}
		return true
	})
	return found, ok
}

func mustByName(t *testing.T, cmd *arena.Commands, name string) arena.EntityId {
	t.Helper()
	eid, ok := byName(cmd, name)
	require.True(t, ok, "no entity named %q", name)
	return eid
}

func TestSetup_lighting(t *testing.T) {
	app := startScene(t, Settings{})
	cmd := app.Commands()

	ambient, _ := arena.Resource[arena.AmbientLight](app)
	assert.Equal(t, arena.White, ambient.Color)
	assert.Equal(t, float32(400), ambient.Brightness)

	sun := mustByName(t, cmd, "sun")
	light := arena.GetComponent[arena.DirectionalLightComponent](cmd, sun)
	require.NotNil(t, light)
	assert.Equal(t, arena.White, light.Color)
	assert.Equal(t, float32(1000), light.Illuminance)
	assert.True(t, light.ShadowsEnabled)

	tr := arena.GetComponent[arena.TransformComponent](cmd, sun)
	assert.True(t, vecNear(tr.Forward(), mgl32.Vec3{1, -1, 0}.Normalize(), 1e-5), "sun looks along %v", tr.Forward())
}

func TestSetup_ground(t *testing.T) {
	app := startScene(t, Settings{})
	cmd := app.Commands()
	assets, _ := arena.Resource[arena.AssetServer](app)

	ground := mustByName(t, cmd, "ground")
	assert.Equal(t, arena.NewTransform(), *arena.GetComponent[arena.TransformComponent](cmd, ground))
	assert.Equal(t, arena.RigidBodyFixed, arena.GetComponent[arena.RigidBodyComponent](cmd, ground).Kind)
	assert.Equal(t,
		arena.NewCollisionGroups(game.LayerEnvironment, game.LayerPlayers),
		*arena.GetComponent[arena.CollisionGroups](cmd, ground))

	mesh, ok := assets.Mesh(*arena.GetComponent[arena.MeshHandle](cmd, ground))
	require.True(t, ok)
	assert.Equal(t, 4, mesh.VertexCount())
	assert.Equal(t, mgl32.Vec3{1000, 0, 1000}, mesh.Positions[2])
	assert.Equal(t, []mgl32.Vec2{{-500, -500}, {500, -500}, {500, 500}, {-500, 500}}, mesh.UVs)

	mat, ok := assets.Material(*arena.GetComponent[arena.MaterialHandle](cmd, ground))
	require.True(t, ok)
	assert.Equal(t, arena.White, mat.BaseColor)
	assert.Zero(t, mat.Reflectance)
	assert.Equal(t, float32(1), mat.PerceptualRoughness)
	require.NotNil(t, mat.BaseColorTexture)
	assert.Equal(t, "textures/Black/tex_7.png", assets.TexturePath(*mat.BaseColorTexture))
	tex, ok := assets.Texture(*mat.BaseColorTexture)
	require.True(t, ok, "the preloaded texture is reused")
	assert.Equal(t, arena.AddressModeRepeat, tex.Sampler.AddressModeU)
	assert.Equal(t, arena.AddressModeRepeat, tex.Sampler.AddressModeV)

	collider := mustByName(t, cmd, "ground-collider")
	parent := arena.GetComponent[arena.Parent](cmd, collider)
	require.NotNil(t, parent)
	assert.Equal(t, ground, parent.Entity)
	col := arena.GetComponent[arena.ColliderComponent](cmd, collider)
	require.NotNil(t, col)
	assert.Equal(t, arena.ShapeHalfSpace, col.Shape)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, col.Normal)
	assert.Equal(t, mgl32.Vec3{}, arena.GetComponent[arena.LocalTransformComponent](cmd, collider).Position)
}

func TestSetup_cubeAndWall(t *testing.T) {
	app := startScene(t, Settings{})
	cmd := app.Commands()
	assets, _ := arena.Resource[arena.AssetServer](app)

	cube := mustByName(t, cmd, "cube")
	tr := arena.GetComponent[arena.TransformComponent](cmd, cube)
	assert.Equal(t, mgl32.Vec3{0, 0.5, 0}, tr.Position)
	assert.True(t, vecNear(tr.Rotation.Rotate(mgl32.Vec3{0, 0, -1}), arena.YawRotation(math.Pi/6).Rotate(mgl32.Vec3{0, 0, -1}), 1e-5))
	assert.False(t, arena.HasComponent[arena.RigidBodyComponent](cmd, cube))
	assert.False(t, arena.HasComponent[arena.ColliderComponent](cmd, cube))

	cubeMat, _ := assets.Material(*arena.GetComponent[arena.MaterialHandle](cmd, cube))
	require.NotNil(t, cubeMat.BaseColorTexture)
	assert.Equal(t, "textures/Green/tex_7.png", assets.TexturePath(*cubeMat.BaseColorTexture))
	cubeTex, ok := assets.Texture(*cubeMat.BaseColorTexture)
	require.True(t, ok)
	assert.Equal(t, arena.DefaultSampler(), cubeTex.Sampler)
	cubeMesh, _ := assets.Mesh(*arena.GetComponent[arena.MeshHandle](cmd, cube))
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, cubeMesh.AABB().Max)

	wall := mustByName(t, cmd, "wall")
	assert.Equal(t, mgl32.Vec3{10, 5, 0}, arena.GetComponent[arena.TransformComponent](cmd, wall).Position)
	assert.Equal(t, arena.RigidBodyFixed, arena.GetComponent[arena.RigidBodyComponent](cmd, wall).Kind)
	col := arena.GetComponent[arena.ColliderComponent](cmd, wall)
	require.NotNil(t, col)
	assert.Equal(t, arena.ShapeCuboid, col.Shape)
	assert.Equal(t, mgl32.Vec3{1, 10, 10}, col.HalfExtents)
	assert.Equal(t,
		arena.NewCollisionGroups(game.LayerEnvironment, game.LayerPlayers),
		*arena.GetComponent[arena.CollisionGroups](cmd, wall))

	wallMat, _ := assets.Material(*arena.GetComponent[arena.MaterialHandle](cmd, wall))
	assert.Equal(t, arena.Yellow, wallMat.BaseColor)
	assert.Nil(t, wallMat.BaseColorTexture)
}

func TestSetup_spawnsPlayer(t *testing.T) {
	app := startScene(t, Settings{})
	cmd := app.Commands()

	p := mustByName(t, cmd, "player")
	assert.True(t, arena.HasComponent[player.Player](cmd, p))
	cam := mustByName(t, cmd, "player-camera")
	local := arena.GetComponent[arena.LocalTransformComponent](cmd, cam)
	require.NotNil(t, local)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, local.Position)
}

func TestSetup_runsOnce(t *testing.T) {
	app := startScene(t, Settings{})
	cmd := app.Commands()
	before := cmd.EntityCount()

	for i := 0; i < 5; i++ {
		app.Update()
	}
	assert.Equal(t, before, cmd.EntityCount())
	assert.Equal(t, 7, before, "sun, ground, its collider, cube, wall, player and camera")
}

func TestSetup_customSettings(t *testing.T) {
	settings := DefaultSettings()
	settings.WallPosition = mgl32.Vec3{-20, 5, 0}
	settings.AmbientBrightness = 100

	app := startScene(t, settings)
	cmd := app.Commands()

	wall := mustByName(t, cmd, "wall")
	assert.Equal(t, mgl32.Vec3{-20, 5, 0}, arena.GetComponent[arena.TransformComponent](cmd, wall).Position)
	ambient, _ := arena.Resource[arena.AmbientLight](app)
	assert.Equal(t, float32(100), ambient.Brightness)
}

func TestMustCollider(t *testing.T) {
	assert.Panics(t, func() {
		mustCollider(arena.HalfSpaceCollider(mgl32.Vec3{}))
	})
	assert.NotPanics(t, func() {
		mustCollider(arena.HalfSpaceCollider(mgl32.Vec3{0, 1, 0}))
	})
}

func TestDefaultSettings_preloads(t *testing.T) {
	preloads := DefaultSettings().Preloads()
	require.Len(t, preloads, 2)
	assert.Equal(t, arena.RepeatSampler(), preloads[0].Sampler)
	assert.Equal(t, arena.DefaultSampler(), preloads[1].Sampler)
}
