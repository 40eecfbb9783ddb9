package world

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/arena"
	"github.com/gekko3d/arena/game"
	"github.com/gekko3d/arena/game/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assetRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	settings := environment.DefaultSettings()
	for _, p := range []string{settings.GroundTexture, settings.CubeTexture} {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		f, err := os.Create(full)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))))
		require.NoError(t, f.Close())
	}
	return root
}

func syncAssets(t *testing.T, app *arena.App) {
	t.Helper()
	assets, ok := arena.Resource[arena.AssetServer](app)
	require.True(t, ok)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, assets.Sync(ctx))
}

func TestHeadlessRun(t *testing.T) {
	app := NewApp(Module{
		AssetRoot:  assetRoot(t),
		FixedDelta: time.Second / 60,
		Frames:     600,
	})

	app.Startup()
	syncAssets(t, app)
	app.Run()

	assert.True(t, app.Finished())
	assert.Equal(t, game.Exit, app.State())

	cmd := app.Commands()
	snap := arena.SnapshotScene(cmd)

	p, ok := snap.Entity("player")
	require.True(t, ok, "the player was spawned once loading finished")
	assert.InDelta(t, 0.9, p.Position.Y(), 1e-2, "standing on the ground")
	assert.InDelta(t, 0, p.Position.X(), 1e-3)

	for _, name := range []string{"sun", "ground", "ground-collider", "cube", "wall", "player-camera"} {
		_, ok := snap.Entity(name)
		assert.True(t, ok, "missing %s", name)
	}
	require.NotNil(t, snap.Ambient)
	assert.Equal(t, float32(400), snap.Ambient.Brightness)

	loading, _ := arena.Resource[game.LoadingState](app)
	assert.Zero(t, loading.Failed)
	assert.Equal(t, 1, loading.Frames)

	out := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, arena.SaveSceneSnapshot(cmd, out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestHeadlessRun_missingTextures(t *testing.T) {
	app := NewApp(Module{
		AssetRoot:  t.TempDir(),
		FixedDelta: time.Second / 60,
		Frames:     120,
	})

	app.Startup()
	syncAssets(t, app)
	app.Update()
	require.Equal(t, game.InGame, app.State(), "missing textures do not block the game")

	loading, _ := arena.Resource[game.LoadingState](app)
	assert.Equal(t, 2, loading.Failed)
}

func TestModule_installsStack(t *testing.T) {
	app := NewApp(Module{})

	_, ok := arena.Resource[arena.Time](app)
	assert.True(t, ok)
	_, ok = arena.Resource[arena.Input](app)
	assert.True(t, ok)
	_, ok = arena.Resource[arena.AssetServer](app)
	assert.True(t, ok)
	_, ok = arena.Resource[arena.PhysicsWorld](app)
	assert.True(t, ok)
	_, ok = arena.Resource[arena.AmbientLight](app)
	assert.True(t, ok)
	settings, ok := arena.Resource[environment.Settings](app)
	require.True(t, ok)
	assert.Equal(t, environment.DefaultSettings(), *settings)
	_, isDefault := app.Logger().(*arena.DefaultLogger)
	assert.True(t, isDefault)
}
