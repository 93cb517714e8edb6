package glwin

import (
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"trafficviz/internal/netmap"
	"trafficviz/internal/render"
)

const circleSegments = 24

// Surface renders screen-space primitives through two streaming batches:
// flat-coloured triangles and textured glyph quads. Everything queued
// between Clear and Present goes out in two draw calls.
type Surface struct {
	win  *glfw.Window
	w, h int

	primProg uint32
	primVAO  uint32
	primVBO  uint32
	primRes  int32

	textProg uint32
	textVAO  uint32
	textVBO  uint32
	textRes  int32
	textTex  int32

	atlas  *fontAtlas
	closed bool

	// Interleaved vertex data, rebuilt each frame.
	prims []float32 // x y r g b a
	texts []float32 // x y u v r g b a
}

func newSurface(win *glfw.Window, w, h int) (*Surface, error) {
	s := &Surface{win: win, w: w, h: h}

	var err error
	if s.primProg, err = linkProgram(primVertSrc, primFragSrc); err != nil {
		return nil, err
	}
	if s.textProg, err = linkProgram(textVertSrc, textFragSrc); err != nil {
		return nil, err
	}
	s.primRes = gl.GetUniformLocation(s.primProg, gl.Str("uResolution\x00"))
	s.textRes = gl.GetUniformLocation(s.textProg, gl.Str("uResolution\x00"))
	s.textTex = gl.GetUniformLocation(s.textProg, gl.Str("uFontTex\x00"))

	gl.GenVertexArrays(1, &s.primVAO)
	gl.GenBuffers(1, &s.primVBO)
	gl.BindVertexArray(s.primVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.primVBO)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 6*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 6*4, gl.PtrOffset(2*4))

	gl.GenVertexArrays(1, &s.textVAO)
	gl.GenBuffers(1, &s.textVBO)
	gl.BindVertexArray(s.textVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.textVBO)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 8*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 8*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, 8*4, gl.PtrOffset(4*4))

	gl.BindVertexArray(0)

	s.atlas = newFontAtlas()
	return s, nil
}

func (s *Surface) Size() (int, int) { return s.w, s.h }

func (s *Surface) Clear(c render.RGB) {
	gl.ClearColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	s.prims = s.prims[:0]
	s.texts = s.texts[:0]
}

func (s *Surface) vertex(x, y float64, c render.RGB) {
	s.prims = append(s.prims,
		float32(x), float32(y),
		float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, 1)
}

func (s *Surface) tri(a, b, c netmap.Point, col render.RGB) {
	s.vertex(a.X, a.Y, col)
	s.vertex(b.X, b.Y, col)
	s.vertex(c.X, c.Y, col)
}

func (s *Surface) quad(p [4]netmap.Point, col render.RGB) {
	s.tri(p[0], p[1], p[2], col)
	s.tri(p[0], p[2], p[3], col)
}

// Line expands the segment into a quad of the given width.
func (s *Surface) Line(a, b netmap.Point, width float64, c render.RGB) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Unit normal scaled to half width.
	nx := -dy / length * width / 2
	ny := dx / length * width / 2
	s.quad([4]netmap.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, c)
}

func (s *Surface) FillCircle(center netmap.Point, radius float64, c render.RGB) {
	step := 2 * math.Pi / circleSegments
	for i := 0; i < circleSegments; i++ {
		a0 := float64(i) * step
		a1 := float64(i+1) * step
		s.tri(center,
			netmap.Point{X: center.X + radius*math.Cos(a0), Y: center.Y + radius*math.Sin(a0)},
			netmap.Point{X: center.X + radius*math.Cos(a1), Y: center.Y + radius*math.Sin(a1)},
			c)
	}
}

func (s *Surface) StrokeCircle(center netmap.Point, radius, width float64, c render.RGB) {
	inner := radius - width/2
	outer := radius + width/2
	if inner < 0 {
		inner = 0
	}
	step := 2 * math.Pi / circleSegments
	for i := 0; i < circleSegments; i++ {
		a0 := float64(i) * step
		a1 := float64(i+1) * step
		c0, s0 := math.Cos(a0), math.Sin(a0)
		c1, s1 := math.Cos(a1), math.Sin(a1)
		s.quad([4]netmap.Point{
			{X: center.X + inner*c0, Y: center.Y + inner*s0},
			{X: center.X + outer*c0, Y: center.Y + outer*s0},
			{X: center.X + outer*c1, Y: center.Y + outer*s1},
			{X: center.X + inner*c1, Y: center.Y + inner*s1},
		}, c)
	}
}

func (s *Surface) FillRect(x, y, w, h float64, c render.RGB) {
	s.quad([4]netmap.Point{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}, c)
}

func (s *Surface) FillQuad(p [4]netmap.Point, c render.RGB) {
	s.quad(p, c)
}

// Text queues one textured quad per rune. Glyphs render above the
// primitive batch, so labels never hide behind shapes.
func (s *Surface) Text(text string, x, y float64, scale float64, c render.RGB) {
	if scale <= 0 {
		scale = 1
	}
	r := float32(c.R) / 255
	g := float32(c.G) / 255
	b := float32(c.B) / 255

	gw := glyphW * float32(scale)
	gh := glyphH * float32(scale)
	px := float32(x)
	py := float32(y)
	for _, ch := range text {
		u0, v0, u1, v1 := s.atlas.uv(ch)
		x0, y0 := px, py
		x1, y1 := px+gw, py+gh
		s.texts = append(s.texts,
			x0, y0, u0, v1, r, g, b, 1,
			x1, y0, u1, v1, r, g, b, 1,
			x1, y1, u1, v0, r, g, b, 1,
			x0, y0, u0, v1, r, g, b, 1,
			x1, y1, u1, v0, r, g, b, 1,
			x0, y1, u0, v0, r, g, b, 1,
		)
		px += gw
	}
}

// Present flushes both batches and swaps buffers.
func (s *Surface) Present() {
	gl.Viewport(0, 0, int32(s.w), int32(s.h))

	if len(s.prims) > 0 {
		gl.UseProgram(s.primProg)
		gl.Uniform2f(s.primRes, float32(s.w), float32(s.h))
		gl.BindVertexArray(s.primVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, s.primVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(s.prims)*4, gl.Ptr(s.prims), gl.DYNAMIC_DRAW)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(s.prims)/6))
	}

	if len(s.texts) > 0 {
		gl.UseProgram(s.textProg)
		gl.Uniform2f(s.textRes, float32(s.w), float32(s.h))
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, s.atlas.tex)
		gl.Uniform1i(s.textTex, 0)
		gl.BindVertexArray(s.textVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, s.textVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(s.texts)*4, gl.Ptr(s.texts), gl.DYNAMIC_DRAW)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(s.texts)/8))
	}

	gl.BindVertexArray(0)
	s.win.SwapBuffers()
}

// Close releases GL objects owned by the surface. Idempotent, since both
// the session and the window tear it down.
func (s *Surface) Close() {
	if s.closed {
		return
	}
	s.closed = true
	gl.DeleteBuffers(1, &s.primVBO)
	gl.DeleteBuffers(1, &s.textVBO)
	gl.DeleteVertexArrays(1, &s.primVAO)
	gl.DeleteVertexArrays(1, &s.textVAO)
	gl.DeleteProgram(s.primProg)
	gl.DeleteProgram(s.textProg)
	s.atlas.delete()
}
