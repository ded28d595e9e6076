package curlfield

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	Key0 int = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyH
	KeyR
	KeySpace
	KeyEscape
	KeyUp
	KeyDown
	KeyMinus
	KeyEqual
	KeyKPPlus
	KeyKPMinus
	KeyShift
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	keyCount
)

type InputModule struct{}

// Input is sampled once per frame. Scroll accumulates from the GLFW
// callback and is cleared after the frame that observed it.
type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseInside              bool
	Scroll                   float64

	pendingScroll float64
	callbacks     bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

// Press records a key or button state for this frame.
func (input *Input) Press(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// MoveCursor updates the cursor position and the delta since the last sample.
func (input *Input) MoveCursor(x, y float64) {
	if input.MouseInside {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	}
	input.MouseX, input.MouseY = x, y
	input.MouseInside = true
}

func (input *Input) AddScroll(dy float64) {
	input.pendingScroll += dy
}

func (input *Input) flushScroll() {
	input.Scroll = input.pendingScroll
	input.pendingScroll = 0
}

func inputSystem(s *WindowState, input *Input) {
	if !input.callbacks {
		s.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
			input.AddScroll(yoff)
		})
		input.callbacks = true
	}

	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		input.Press(key, s.window.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range buttonToGlfw {
		input.Press(btn, s.window.GetMouseButton(glfwBtn) == glfw.Press)
	}

	input.MouseDeltaX, input.MouseDeltaY = 0, 0
	input.MoveCursor(s.window.GetCursorPos())
	input.flushScroll()
}

var keyToGlfw = map[int]glfw.Key{
	Key0:       glfw.Key0,
	Key1:       glfw.Key1,
	Key2:       glfw.Key2,
	Key3:       glfw.Key3,
	Key4:       glfw.Key4,
	Key5:       glfw.Key5,
	Key6:       glfw.Key6,
	Key7:       glfw.Key7,
	Key8:       glfw.Key8,
	Key9:       glfw.Key9,
	KeyH:       glfw.KeyH,
	KeyR:       glfw.KeyR,
	KeySpace:   glfw.KeySpace,
	KeyEscape:  glfw.KeyEscape,
	KeyUp:      glfw.KeyUp,
	KeyDown:    glfw.KeyDown,
	KeyMinus:   glfw.KeyMinus,
	KeyEqual:   glfw.KeyEqual,
	KeyKPPlus:  glfw.KeyKPAdd,
	KeyKPMinus: glfw.KeyKPSubtract,
	KeyShift:   glfw.KeyLeftShift,
}

var buttonToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}
