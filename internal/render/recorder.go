package render

import "trafficviz/internal/netmap"

// Op identifies a recorded draw call.
type Op string

const (
	OpClear        Op = "clear"
	OpLine         Op = "line"
	OpFillCircle   Op = "fill-circle"
	OpStrokeCircle Op = "stroke-circle"
	OpFillRect     Op = "fill-rect"
	OpFillQuad     Op = "fill-quad"
	OpText         Op = "text"
	OpPresent      Op = "present"
)

// Call is one recorded draw operation.
type Call struct {
	Op     Op
	Points []netmap.Point
	Width  float64
	Color  RGB
	Text   string
}

// Recorder is a headless Surface that records every draw call. It backs
// windowless runs and the renderer/session tests.
type Recorder struct {
	W, H  int
	Calls []Call
}

// NewRecorder returns a recording surface of the given size.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h}
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }

func (r *Recorder) Clear(c RGB) {
	r.Calls = r.Calls[:0]
	r.Calls = append(r.Calls, Call{Op: OpClear, Color: c})
}

func (r *Recorder) Line(a, b netmap.Point, width float64, c RGB) {
	r.Calls = append(r.Calls, Call{Op: OpLine, Points: []netmap.Point{a, b}, Width: width, Color: c})
}

func (r *Recorder) FillCircle(center netmap.Point, radius float64, c RGB) {
	r.Calls = append(r.Calls, Call{Op: OpFillCircle, Points: []netmap.Point{center}, Width: radius, Color: c})
}

func (r *Recorder) StrokeCircle(center netmap.Point, radius, width float64, c RGB) {
	r.Calls = append(r.Calls, Call{Op: OpStrokeCircle, Points: []netmap.Point{center}, Width: radius, Color: c})
}

func (r *Recorder) FillRect(x, y, w, h float64, c RGB) {
	r.Calls = append(r.Calls, Call{Op: OpFillRect, Points: []netmap.Point{{X: x, Y: y}, {X: x + w, Y: y + h}}, Color: c})
}

func (r *Recorder) FillQuad(p [4]netmap.Point, c RGB) {
	r.Calls = append(r.Calls, Call{Op: OpFillQuad, Points: p[:], Color: c})
}

func (r *Recorder) Text(s string, x, y float64, scale float64, c RGB) {
	r.Calls = append(r.Calls, Call{Op: OpText, Points: []netmap.Point{{X: x, Y: y}}, Width: scale, Color: c, Text: s})
}

func (r *Recorder) Present() {
	r.Calls = append(r.Calls, Call{Op: OpPresent})
}

// CountOf returns how many calls of the given op were recorded.
func (r *Recorder) CountOf(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// FirstIndexOf returns the index of the first call of the given op, or -1.
func (r *Recorder) FirstIndexOf(op Op) int {
	for i, c := range r.Calls {
		if c.Op == op {
			return i
		}
	}
	return -1
}
