package platform

import (
	"github.com/gekko3d/arena"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// InputModule polls the window every frame into the arena.Input resource.
// Install it after WindowModule.
type InputModule struct{}

func (InputModule) Install(app *arena.App, cmd *arena.Commands) {
	if _, ok := arena.Resource[arena.Input](app); !ok {
		arena.InputModule{}.Install(app, cmd)
	}
	app.UseSystem(
		arena.System(PollInputSystem).
			InStage(arena.PreUpdate).
			RunAlways(),
	)
}

func PollInputSystem(ws *WindowState, input *arena.Input) {
	glfw.PollEvents()
	if ws.window == nil {
		return
	}

	input.BeginFrame()
	for key, glfwKey := range keyToGlfw {
		input.SetKey(key, ws.window.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range buttonToGlfw {
		input.SetKey(btn, ws.window.GetMouseButton(glfwBtn) == glfw.Press)
	}

	input.SetCursor(ws.window.GetCursorPos())
	input.WindowWidth, input.WindowHeight = ws.window.GetSize()

	if input.MouseCaptured {
		ws.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		ws.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

var buttonToGlfw = map[arena.Key]glfw.MouseButton{
	arena.MouseButtonLeft:   glfw.MouseButtonLeft,
	arena.MouseButtonRight:  glfw.MouseButtonRight,
	arena.MouseButtonMiddle: glfw.MouseButtonMiddle,
}

var keyToGlfw = map[arena.Key]glfw.Key{
	arena.KeyA:         glfw.KeyA,
	arena.KeyB:         glfw.KeyB,
	arena.KeyC:         glfw.KeyC,
	arena.KeyD:         glfw.KeyD,
	arena.KeyE:         glfw.KeyE,
	arena.KeyF:         glfw.KeyF,
	arena.KeyG:         glfw.KeyG,
	arena.KeyH:         glfw.KeyH,
	arena.KeyI:         glfw.KeyI,
	arena.KeyJ:         glfw.KeyJ,
	arena.KeyK:         glfw.KeyK,
	arena.KeyL:         glfw.KeyL,
	arena.KeyM:         glfw.KeyM,
	arena.KeyN:         glfw.KeyN,
	arena.KeyO:         glfw.KeyO,
	arena.KeyP:         glfw.KeyP,
	arena.KeyQ:         glfw.KeyQ,
	arena.KeyR:         glfw.KeyR,
	arena.KeyS:         glfw.KeyS,
	arena.KeyT:         glfw.KeyT,
	arena.KeyU:         glfw.KeyU,
	arena.KeyV:         glfw.KeyV,
	arena.KeyW:         glfw.KeyW,
	arena.KeyX:         glfw.KeyX,
	arena.KeyY:         glfw.KeyY,
	arena.KeyZ:         glfw.KeyZ,
	arena.Key0:         glfw.Key0,
	arena.Key1:         glfw.Key1,
	arena.Key2:         glfw.Key2,
	arena.Key3:         glfw.Key3,
	arena.Key4:         glfw.Key4,
	arena.Key5:         glfw.Key5,
	arena.Key6:         glfw.Key6,
	arena.Key7:         glfw.Key7,
	arena.Key8:         glfw.Key8,
	arena.Key9:         glfw.Key9,
	arena.KeySpace:     glfw.KeySpace,
	arena.KeyEnter:     glfw.KeyEnter,
	arena.KeyEscape:    glfw.KeyEscape,
	arena.KeyTab:       glfw.KeyTab,
	arena.KeyBackspace: glfw.KeyBackspace,
	arena.KeyRight:     glfw.KeyRight,
	arena.KeyLeft:      glfw.KeyLeft,
	arena.KeyDown:      glfw.KeyDown,
	arena.KeyUp:        glfw.KeyUp,
	arena.KeyF1:        glfw.KeyF1,
	arena.KeyF2:        glfw.KeyF2,
	arena.KeyF3:        glfw.KeyF3,
	arena.KeyF4:        glfw.KeyF4,
	arena.KeyShift:     glfw.KeyLeftShift,
	arena.KeyControl:   glfw.KeyLeftControl,
	arena.KeyLeftAlt:   glfw.KeyLeftAlt,
}
