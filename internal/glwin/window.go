// Package glwin is the OpenGL presentation backend: a GLFW window, a
// batched 2D drawing surface and keyboard input polling. Callers must run
// it on a locked OS thread.
package glwin

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// Window bundles the GLFW handle with its drawing surface and input.
type Window struct {
	win     *glfw.Window
	surface *Surface
	input   *Input
	log     *zap.Logger
}

// Open initializes GLFW and OpenGL and creates a fixed-size window.
func Open(width, height int, title string, log *zap.Logger) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	log.Info("opengl ready", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	surface, err := newSurface(win, width, height)
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}

	return &Window{
		win:     win,
		surface: surface,
		input:   newInput(win),
		log:     log,
	}, nil
}

// Surface returns the drawing target for this window.
func (w *Window) Surface() *Surface { return w.surface }

// Input returns the per-frame keyboard poller.
func (w *Window) Input() *Input { return w.input }

// Close tears down the surface, the window and GLFW.
func (w *Window) Close() {
	w.surface.Close()
	w.win.Destroy()
	glfw.Terminate()
}
