// Package world assembles the complete arena game on top of the engine modules.
package world

import (
	"time"

	"github.com/gekko3d/arena"
	"github.com/gekko3d/arena/game"
	"github.com/gekko3d/arena/game/environment"
	"github.com/gekko3d/arena/game/player"
)

// Module installs logging, time, input, assets, lighting, hierarchy, physics, the loading
// flow, the environment and the player. Window and renderer modules go after it.
type Module struct {
	AssetRoot string
	Debug     bool
	// FixedDelta pins the frame time; zero follows the wall clock.
	FixedDelta time.Duration
	// Frames stops the app after that many updates; zero runs until exit.
	Frames      uint64
	Environment environment.Settings
}

func (m Module) Install(app *arena.App, cmd *arena.Commands) {
	settings := m.Environment
	if settings == (environment.Settings{}) {
		settings = environment.DefaultSettings()
	}

	modules := []arena.Module{
		arena.LoggingModule{Prefix: "arena", Debug: m.Debug},
		arena.TimeModule{FixedDelta: m.FixedDelta},
		arena.InputModule{},
		arena.AssetServerModule{Root: m.AssetRoot},
		arena.LightingModule{},
		arena.HierarchyModule{},
		arena.PhysicsModule{},
		game.LoadingModule{Preload: settings.Preloads()},
		environment.Module{Settings: settings},
		player.Module{},
		game.FrameLimitModule{Frames: m.Frames},
	}
	for _, mod := range modules {
		mod.Install(app, cmd)
	}
}

// NewApp builds a stateful app that starts in Loading and ends in Exit, with the game
// installed first and extra modules (window, renderer) after it.
func NewApp(m Module, extra ...arena.Module) *arena.App {
	return arena.NewAppBuilder().
		UseStates(game.Loading, game.Exit).
		UseModule(m).
		UseModule(extra...).
		Build()
}
