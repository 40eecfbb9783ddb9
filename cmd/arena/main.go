package main

import (
	"flag"
	"runtime"
	"time"

	"github.com/gekko3d/arena"
	"github.com/gekko3d/arena/game/player"
	"github.com/gekko3d/arena/game/world"
	"github.com/gekko3d/arena/platform"
	"github.com/gekko3d/arena/render"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	assets := flag.String("assets", "assets", "Directory textures are loaded from")
	headless := flag.Bool("headless", false, "Run without a window or renderer")
	frames := flag.Uint64("frames", 0, "Stop after this many frames (headless defaults to 600)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")
	dump := flag.String("dump", "", "Write a JSON scene snapshot to this file on exit")
	spectator := flag.Bool("spectator", false, "Fly a free camera instead of the player's")
	flag.Parse()

	mod := world.Module{
		AssetRoot: *assets,
		Debug:     *debug,
		Frames:    *frames,
	}
	if *headless {
		mod.FixedDelta = time.Second / 60
		if mod.Frames == 0 {
			mod.Frames = 600
		}
	}

	var extra []arena.Module
	if *spectator {
		extra = append(extra, player.SpectatorModule{})
	}
	if !*headless {
		extra = append(extra,
			platform.WindowModule{Width: *width, Height: *height, Title: "Arena"},
			platform.InputModule{},
			render.Module{},
		)
	}

	app := world.NewApp(mod, extra...)
	app.Run()

	if *dump != "" {
		if err := arena.SaveSceneSnapshot(app.Commands(), *dump); err != nil {
			app.Logger().Errorf("dump: %v", err)
		} else {
			app.Logger().Infof("scene written to %s", *dump)
		}
	}
	if ws, ok := arena.Resource[platform.WindowState](app); ok {
		ws.Destroy()
	}
}
