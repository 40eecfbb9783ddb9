// Package platform owns the native window and feeds its input into the engine.
package platform

import (
	"fmt"
	"runtime"

	"github.com/gekko3d/arena"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	window *glfw.Window
	Width  int
	Height int
	Title  string

	closing bool
}

// Glfw exposes the native window to renderers.
func (s *WindowState) Glfw() *glfw.Window {
	return s.window
}

func (s *WindowState) ShouldClose() bool {
	return s.window.ShouldClose()
}

// Destroy closes the window and terminates glfw. Call once, after the app finished.
func (s *WindowState) Destroy() {
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	glfw.Terminate()
}

// WindowModule creates the single shared glfw window. Zero sizes fall back to 1280x720.
// Installing it twice keeps the first window.
type WindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m WindowModule) Install(app *arena.App, cmd *arena.Commands) {
	if _, ok := arena.Resource[WindowState](app); ok {
		return
	}

	width, height, title := m.Width, m.Height, m.Title
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Arena"
	}

	ws, err := createWindowState(width, height, title)
	if err != nil {
		app.Logger().Errorf("window: %v", err)
		panic(err)
	}
	cmd.AddResources(ws)

	app.UseSystem(
		arena.System(WindowCloseSystem).
			InStage(arena.Finale).
			RunAlways(),
	)
}

// WindowCloseSystem turns a window close request into an app exit.
func WindowCloseSystem(cmd *arena.Commands, ws *WindowState) {
	if ws.window == nil || !ws.window.ShouldClose() {
		return
	}
	if !ws.closing {
		ws.closing = true
		cmd.Logger().Infof("window closed, exiting")
		cmd.Exit()
	}
}

func createWindowState(width int, height int, title string) (*WindowState, error) {
	// glfw calls must stay on the main thread.
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	return &WindowState{
		window: win,
		Width:  width,
		Height: height,
		Title:  title,
	}, nil
}
