package render

import "trafficviz/internal/netmap"

// Surface is a drawing target in screen-pixel space. Implementations are
// the OpenGL window backend and a recording double for tests.
type Surface interface {
	// Size returns the drawable area in pixels.
	Size() (w, h int)
	// Clear fills the whole surface with a colour.
	Clear(c RGB)
	// Line draws a thick line segment between two screen points.
	Line(a, b netmap.Point, width float64, c RGB)
	// FillCircle draws a filled disc.
	FillCircle(center netmap.Point, radius float64, c RGB)
	// StrokeCircle draws a circle outline.
	StrokeCircle(center netmap.Point, radius, width float64, c RGB)
	// FillRect draws an axis-aligned filled rectangle.
	FillRect(x, y, w, h float64, c RGB)
	// FillQuad draws an arbitrary filled quadrilateral (used for rotated
	// vehicle bodies).
	FillQuad(p [4]netmap.Point, c RGB)
	// Text draws a string with its top-left corner at (x, y).
	Text(s string, x, y float64, scale float64, c RGB)
	// Present flips the finished frame to the screen.
	Present()
}
