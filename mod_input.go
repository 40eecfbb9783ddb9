package arena

type Key int

const (
	KeyA Key = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyShift
	KeyControl
	KeyLeftAlt
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle

	keyCount
)

// Input is the per-frame keyboard and mouse state. A platform module writes it in
// PreUpdate; gameplay systems only read it.
type Input struct {
	pressed      [keyCount]bool
	justPressed  [keyCount]bool
	justReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseCaptured            bool

	WindowWidth, WindowHeight int
}

type InputModule struct{}

func (InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
}

func (in *Input) Pressed(k Key) bool {
	return k >= 0 && k < keyCount && in.pressed[k]
}

func (in *Input) JustPressed(k Key) bool {
	return k >= 0 && k < keyCount && in.justPressed[k]
}

func (in *Input) JustReleased(k Key) bool {
	return k >= 0 && k < keyCount && in.justReleased[k]
}

// BeginFrame clears the edge flags. Call once per frame before feeding key states.
func (in *Input) BeginFrame() {
	in.justPressed = [keyCount]bool{}
	in.justReleased = [keyCount]bool{}
}

// SetKey records the current level of a key and derives its edges.
func (in *Input) SetKey(k Key, down bool) {
	if k < 0 || k >= keyCount {
		return
	}
	if down && !in.pressed[k] {
		in.justPressed[k] = true
	}
	if !down && in.pressed[k] {
		in.justReleased[k] = true
	}
	in.pressed[k] = down
}

// SetCursor moves the cursor. Deltas accumulate only while the mouse is captured.
func (in *Input) SetCursor(x, y float64) {
	if in.MouseCaptured {
		in.MouseDeltaX = x - in.MouseX
		in.MouseDeltaY = y - in.MouseY
	} else {
		in.MouseDeltaX = 0
		in.MouseDeltaY = 0
	}
	in.MouseX = x
	in.MouseY = y
}

// Keys lists every key code, for platform mapping tables.
func Keys() []Key {
	keys := make([]Key, 0, keyCount)
	for k := Key(0); k < keyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}
