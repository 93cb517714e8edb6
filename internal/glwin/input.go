package glwin

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"trafficviz/internal/session"
)

const panStep = 20

// Input polls the keyboard once per frame. Pan keys repeat while held,
// zoom and toggles fire on the press edge only.
type Input struct {
	win  *glfw.Window
	prev map[glfw.Key]bool
}

func newInput(win *glfw.Window) *Input {
	return &Input{win: win, prev: map[glfw.Key]bool{}}
}

func (in *Input) held(k glfw.Key) bool {
	return in.win.GetKey(k) == glfw.Press
}

// justPressed reports a key down this frame that was up last frame.
func (in *Input) justPressed(k glfw.Key) bool {
	down := in.held(k)
	was := in.prev[k]
	in.prev[k] = down
	return down && !was
}

func (in *Input) Poll() session.Input {
	glfw.PollEvents()

	var out session.Input
	if in.held(glfw.KeyLeft) {
		out.PanX += panStep
	}
	if in.held(glfw.KeyRight) {
		out.PanX -= panStep
	}
	if in.held(glfw.KeyUp) {
		out.PanY += panStep
	}
	if in.held(glfw.KeyDown) {
		out.PanY -= panStep
	}

	out.ZoomIn = in.justPressed(glfw.KeyEqual) || in.justPressed(glfw.KeyKPAdd)
	out.ZoomOut = in.justPressed(glfw.KeyMinus) || in.justPressed(glfw.KeyKPSubtract)

	out.ToggleIDs = in.justPressed(glfw.KeyI)
	out.ToggleSpeed = in.justPressed(glfw.KeyS)
	out.ToggleWait = in.justPressed(glfw.KeyW)

	out.Quit = in.win.ShouldClose() || in.justPressed(glfw.KeyEscape) || in.justPressed(glfw.KeyQ)
	return out
}
