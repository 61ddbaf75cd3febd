// Package window opens a desktop window with an OpenGL 4.1 core context and
// exposes its input state for polling once per frame.
package window

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowError struct {
	msg string
	err error
}

func (e *WindowError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *WindowError) Unwrap() error { return e.err }

// Window must be created and used from the main, locked OS thread.
type Window struct {
	win *glfw.Window

	keys   []glfw.Key
	scroll float64
}

func New(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, &WindowError{"failed to initialise glfw", err}
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, &WindowError{"failed to create window", err}
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	w := &Window{win: win}
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press || action == glfw.Repeat {
			w.keys = append(w.keys, key)
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		// glfw reports scrolling up as positive; the viewer expects
		// positive deltas to mean scrolling down.
		w.scroll -= yoff
	})
	return w, nil
}

// GetSize returns the window size in screen coordinates.
func (w *Window) GetSize() (int, int) {
	return w.win.GetSize()
}

// GetFramebufferSize returns the drawable size in pixels.
func (w *Window) GetFramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

func (w *Window) Close() {
	w.win.SetShouldClose(true)
}

func (w *Window) SwapBuffers() {
	w.win.SwapBuffers()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// WaitEvents blocks until input arrives or timeout seconds pass.
func (w *Window) WaitEvents(timeout float64) {
	glfw.WaitEventsTimeout(timeout)
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.win.GetCursorPos()
}

// GetMouseButton reports whether the left button is held.
func (w *Window) GetMouseButton() bool {
	return w.win.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press
}

// Modifier reports whether ctrl or super is held.
func (w *Window) Modifier() bool {
	for _, k := range [...]glfw.Key{glfw.KeyLeftControl, glfw.KeyRightControl, glfw.KeyLeftSuper, glfw.KeyRightSuper} {
		if w.win.GetKey(k) == glfw.Press {
			return true
		}
	}
	return false
}

// Keys returns the keys pressed since the last call.
func (w *Window) Keys() []glfw.Key {
	keys := w.keys
	w.keys = nil
	return keys
}

// Scroll returns the vertical scroll accumulated since the last call.
func (w *Window) Scroll() float64 {
	s := w.scroll
	w.scroll = 0
	return s
}

func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

func (w *Window) Destroy() {
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
	glfw.Terminate()
}
