// Package game holds what the gameplay packages share: app states, collision layers
// and the loading flow that gates the scene on its textures.
package game

import (
	"github.com/gekko3d/arena"
)

const (
	Loading arena.State = iota
	InGame
	Exit
)

const (
	LayerEnvironment = arena.Group1
	LayerPlayers     = arena.Group2
)

// Preload is a texture requested before the game starts.
type Preload struct {
	Path    string
	Sampler arena.SamplerDescriptor
}

// LoadingState tracks the textures requested while Loading.
type LoadingState struct {
	Handles []arena.TextureHandle
	Failed  int
	Frames  int
}

// LoadingModule requests the preloads when the app enters Loading and switches to
// InGame once none is pending. Failed loads are reported but never block.
type LoadingModule struct {
	Preload []Preload
}

func (m LoadingModule) Install(app *arena.App, cmd *arena.Commands) {
	preloads := append([]Preload(nil), m.Preload...)
	cmd.AddResources(&LoadingState{})

	app.UseSystem(
		arena.System(func(assets *arena.AssetServer, state *LoadingState, log arena.Logger) {
			for _, p := range preloads {
				state.Handles = append(state.Handles, assets.LoadTexture(p.Path, arena.WithSampler(p.Sampler)))
			}
			log.Infof("loading %d textures", len(state.Handles))
		}).
			InStage(arena.PreUpdate).
			InState(arena.OnEnter(Loading)),
	)
	app.UseSystem(
		arena.System(LoadingSystem).
			InStage(arena.Update).
			InState(arena.OnExecute(Loading)),
	)
}

// LoadingSystem moves to InGame as soon as every requested texture settled.
func LoadingSystem(cmd *arena.Commands, assets *arena.AssetServer, state *LoadingState, log arena.Logger) {
	state.Frames++
	if assets.PendingLoads() > 0 {
		return
	}

	state.Failed = 0
	for _, h := range state.Handles {
		if assets.LoadState(h) == arena.LoadStateFailed {
			state.Failed++
			log.Warnf("preload %s: %v", assets.TexturePath(h), assets.LoadError(h))
		}
	}
	log.Infof("loading done after %d frames (%d failed)", state.Frames, state.Failed)
	cmd.ChangeState(InGame)
}

// FrameLimitModule ends the app after Frames updates. Zero disables the limit.
type FrameLimitModule struct {
	Frames uint64
}

type frameLimit struct {
	max   uint64
	count uint64
}

func (m FrameLimitModule) Install(app *arena.App, cmd *arena.Commands) {
	if m.Frames == 0 {
		return
	}
	cmd.AddResources(&frameLimit{max: m.Frames})
	app.UseSystem(
		arena.System(frameLimitSystem).
			InStage(arena.Finale).
			RunAlways(),
	)
}

func frameLimitSystem(cmd *arena.Commands, limit *frameLimit, log arena.Logger) {
	limit.count++
	if limit.count == limit.max {
		log.Infof("frame limit %d reached", limit.max)
		cmd.Exit()
	}
}
