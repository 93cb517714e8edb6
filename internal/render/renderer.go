// Package render draws the per-frame picture: network geometry, vehicle
// glyphs, traffic-signal stacks, junction markers and the statistics
// overlay. All operations are stateless with respect to the frame; styling
// comes from an injected Theme.
package render

import (
	"math"

	"go.uber.org/zap"

	"trafficviz/internal/netmap"
	"trafficviz/internal/view"
)

// Normalisation ceilings for the vehicle colour effects.
const (
	speedNormCeiling = 30.0 // distance units per second
	waitNormCeiling  = 60.0 // seconds
)

// VehicleSnapshot is one vehicle's dynamic state for the current frame.
type VehicleSnapshot struct {
	ID       string
	Pos      netmap.Point // simulation space
	Heading  float64      // degrees, 0=east, counterclockwise
	Category Category
	Speed    float64
	Waiting  float64 // seconds stationary
}

// SignalSnapshot is one traffic signal's state for the current frame. Pos
// is the anchor resolved once at session start, in simulation space.
type SignalSnapshot struct {
	ID    string
	Pos   netmap.Point
	State string // one colour code per controlled link
}

// Renderer performs the draw operations for a frame.
type Renderer struct {
	theme Theme
	log   *zap.Logger
}

// New builds a renderer with the given style configuration.
func New(theme Theme, log *zap.Logger) *Renderer {
	return &Renderer{theme: theme, log: log}
}

// Theme returns the injected style configuration.
func (r *Renderer) Theme() Theme { return r.theme }

// VehicleColor computes the glyph colour for a vehicle: the category base
// colour, lightened toward white with speed, then blended toward the
// stopped colour with waiting time. Both effects are linear per channel
// and applied in that order.
func (r *Renderer) VehicleColor(cat Category, speed, waiting float64) RGB {
	c := r.theme.VehicleStyle(cat).Color
	if speed > 0 {
		f := math.Min(1, speed/speedNormCeiling)
		c = c.Lerp(RGB{R: 255, G: 255, B: 255}, 0.5*f)
	}
	if waiting > 0 {
		w := math.Min(1, waiting/waitNormCeiling)
		c = c.Lerp(r.theme.Stopped, w)
	}
	return c
}

// VehicleScreenAngle converts a simulation heading (degrees, 0=east,
// counterclockwise) to the glyph rotation on screen, accounting for the
// inverted vertical axis.
func VehicleScreenAngle(heading float64) float64 {
	return -heading + 90
}

// DrawNetwork draws every road segment as consecutive thick line
// segments. Segments with fewer than two shape points are skipped.
func (r *Renderer) DrawNetwork(s Surface, vp *view.Viewport) {
	width := r.theme.RoadWidth * vp.Zoom
	for id := range vp.Network().Edges {
		shape, ok := vp.EdgeShape(id)
		if !ok || len(shape) < 2 {
			continue
		}
		for i := 0; i < len(shape)-1; i++ {
			s.Line(shape[i], shape[i+1], width, r.theme.Road)
		}
	}
}

// DrawVehicle draws one vehicle glyph: a rotated body quad, a nose wedge
// marking the heading and an optional label above.
func (r *Renderer) DrawVehicle(s Surface, vp *view.Viewport, v VehicleSnapshot, label string) {
	center := vp.Project(v.Pos)
	style := r.theme.VehicleStyle(v.Category)
	color := r.VehicleColor(v.Category, v.Speed, v.Waiting)

	halfW := style.Width * vp.Zoom / 2
	halfH := style.Height * vp.Zoom / 2

	rad := VehicleScreenAngle(v.Heading) * math.Pi / 180
	// Screen Y grows downward, so a counterclockwise visual rotation is a
	// negative mathematical angle.
	cos, sin := math.Cos(-rad), math.Sin(-rad)
	rot := func(dx, dy float64) netmap.Point {
		return netmap.Point{
			X: center.X + dx*cos - dy*sin,
			Y: center.Y + dx*sin + dy*cos,
		}
	}

	s.FillQuad([4]netmap.Point{
		rot(-halfW, -halfH),
		rot(halfW, -halfH),
		rot(halfW, halfH),
		rot(-halfW, halfH),
	}, color)

	// Nose wedge on the leading edge.
	s.FillQuad([4]netmap.Point{
		rot(halfW*0.8, 0),
		rot(halfW*0.3, -halfH*0.6),
		rot(halfW*0.3, halfH*0.6),
		rot(halfW*0.8, 0),
	}, RGB{})

	if label != "" {
		s.Text(label, center.X, center.Y-15*vp.Zoom, 1, r.theme.LabelText)
	}
}

// DrawTrafficLight draws a vertical stack of one indicator per state
// character inside a background panel, with the signal id labelled above.
func (r *Renderer) DrawTrafficLight(s Surface, vp *view.Viewport, sig SignalSnapshot) {
	if sig.State == "" {
		return
	}
	center := vp.Project(sig.Pos)
	z := vp.Zoom

	radius := 10 * z
	spacing := 6 * z
	boxW := radius*2 + 8*z
	boxH := (radius*2+spacing)*float64(len(sig.State)) + 8*z

	s.FillRect(center.X-boxW/2, center.Y-boxH/2, boxW, boxH, r.theme.PanelBorder)
	s.FillRect(center.X-boxW/2+2, center.Y-boxH/2+2, boxW-4, boxH-4, r.theme.PanelFill)

	y := center.Y - boxH/2 + radius + 4*z
	for i := 0; i < len(sig.State); i++ {
		lamp := netmap.Point{X: center.X, Y: y + float64(i)*(radius*2+spacing)}
		s.FillCircle(lamp, radius+2, r.theme.PanelBorder)
		s.FillCircle(lamp, radius, r.signalColor(sig.State[i]))
	}

	s.Text(sig.ID, center.X, center.Y-boxH/2-14*z, 1, r.theme.LabelText)
}

func (r *Renderer) signalColor(code byte) RGB {
	switch code {
	case 'G', 'g':
		return r.theme.SignalGreen
	case 'Y', 'y':
		return r.theme.SignalYellow
	case 'R', 'r':
		return r.theme.SignalRed
	default:
		return r.theme.SignalOff
	}
}

// DrawJunction draws a fixed-radius marker at a junction's projected
// position. Unresolved ids are silently skipped.
func (r *Renderer) DrawJunction(s Surface, vp *view.Viewport, id string) {
	pos, ok := vp.NodePos(id)
	if !ok {
		return
	}
	radius := r.theme.JunctionRadius * vp.Zoom
	s.FillCircle(pos, radius, r.theme.Junction)
	s.StrokeCircle(pos, radius, 2, r.theme.JunctionOutline)
}

// Overlay anchor and line spacing, screen pixels.
const (
	overlayX    = 10.0
	overlayY    = 10.0
	overlayStep = 20.0
)

// DrawOverlay draws statistics lines top-to-bottom at the fixed anchor.
func (r *Renderer) DrawOverlay(s Surface, lines []string) {
	y := overlayY
	for _, line := range lines {
		s.Text(line, overlayX, y, 1, r.theme.OverlayText)
		y += overlayStep
	}
}
