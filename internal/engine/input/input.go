// Package input turns SDL2 events into per-frame demo actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Actions is what the user asked for during one frame.
type Actions struct {
	Quit bool

	// Resized is set with the new drawable size when the window changed.
	Resized       bool
	Width, Height int

	// Orbit drag and wheel zoom.
	DragX, DragY float32
	Zoom         float32

	// Movement axes in [-1, 1] from held keys.
	Forward, Right, Up float32

	// MultiplierIndex is the selected resolution multiplier (0..3), or -1.
	MultiplierIndex int

	ToggleReflection bool
	Capture          bool

	// Pick is set on a right click at (PickX, PickY), normalized to the
	// window with (0, 0) at the top-left.
	Pick         bool
	PickX, PickY float32
}

// Input polls SDL events.
type Input struct {
	dragging bool
	drawable func() (int, int)
}

// New creates an input handler. drawable reports the drawable size after
// a resize.
func New(drawable func() (int, int)) *Input {
	return &Input{drawable: drawable}
}

// Poll drains pending events into the actions for this frame.
func (i *Input) Poll() Actions {
	a := Actions{MultiplierIndex: -1}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			a.Quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				a.Resized = true
				a.Width, a.Height = int(e.Data1), int(e.Data2)
				if i.drawable != nil {
					a.Width, a.Height = i.drawable()
				}
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.keyDown(e.Keysym.Scancode, &a)
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
			}
			if e.Button == sdl.BUTTON_RIGHT && e.Type == sdl.MOUSEBUTTONDOWN {
				i.pick(e, &a)
			}

		case *sdl.MouseMotionEvent:
			if i.dragging {
				a.DragX += float32(e.XRel)
				a.DragY += float32(e.YRel)
			}

		case *sdl.MouseWheelEvent:
			a.Zoom += float32(e.Y)
		}
	}

	i.heldKeys(&a)
	return a
}

func (i *Input) pick(e *sdl.MouseButtonEvent, a *Actions) {
	win, err := sdl.GetWindowFromID(e.WindowID)
	if err != nil {
		return
	}
	w, h := win.GetSize()
	if w <= 0 || h <= 0 {
		return
	}
	a.Pick = true
	a.PickX = float32(e.X) / float32(w)
	a.PickY = float32(e.Y) / float32(h)
}

func (i *Input) keyDown(key sdl.Scancode, a *Actions) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		a.Quit = true
	case sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3, sdl.SCANCODE_4:
		a.MultiplierIndex = int(key - sdl.SCANCODE_1)
	case sdl.SCANCODE_R:
		a.ToggleReflection = true
	case sdl.SCANCODE_F12:
		a.Capture = true
	}
}

func (i *Input) heldKeys(a *Actions) {
	keys := sdl.GetKeyboardState()
	axis := func(pos, neg sdl.Scancode) float32 {
		var v float32
		if keys[pos] != 0 {
			v++
		}
		if keys[neg] != 0 {
			v--
		}
		return v
	}
	a.Forward = axis(sdl.SCANCODE_W, sdl.SCANCODE_S)
	a.Right = axis(sdl.SCANCODE_D, sdl.SCANCODE_A)
	a.Up = axis(sdl.SCANCODE_E, sdl.SCANCODE_Q)
}
