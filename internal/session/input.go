package session

// Input is one frame's worth of user intent. Pan deltas are screen
// pixels; toggles are edge-triggered (true only on the frame the key went
// down).
type Input struct {
	PanX, PanY float64
	ZoomIn     bool
	ZoomOut    bool

	ToggleIDs   bool
	ToggleSpeed bool
	ToggleWait  bool

	Quit bool
}

// InputSource is polled once per step. The GLFW window implements it; the
// tests use a scripted source.
type InputSource interface {
	Poll() Input
}
