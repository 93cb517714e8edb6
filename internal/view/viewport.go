// Package view maps simulation-space coordinates onto screen-space pixels.
// The base projection fits the whole network inside the window with margins
// and preserves aspect ratio; runtime pan/zoom compose on top of it.
package view

import (
	"trafficviz/internal/netmap"
)

// Fallback box used when the network has no extent at all, so the scale
// math never divides by zero.
const defaultBoxSize = 100.0

// Viewport holds the projection state. The base fields are fixed at
// construction; Pan and Zoom are mutated by input events each frame.
type Viewport struct {
	net *netmap.Network

	Min, Max  netmap.Point
	BaseScale float64
	OffX      float64
	OffY      float64

	winW, winH int

	Pan  netmap.Point
	Zoom float64
}

// New computes the base projection for the given window. The bounding box
// covers every node position and every edge shape point; a degenerate
// dimension is substituted with size 1 and scale 1.
func New(net *netmap.Network, winW, winH, margin int) *Viewport {
	v := &Viewport{net: net, winW: winW, winH: winH, Zoom: 1.0}

	min, max, ok := net.Bounds()
	if !ok {
		min = netmap.Point{}
		max = netmap.Point{X: defaultBoxSize, Y: defaultBoxSize}
	}
	v.Min, v.Max = min, max

	availW := float64(winW - 2*margin)
	availH := float64(winH - 2*margin)
	boxW := max.X - min.X
	boxH := max.Y - min.Y

	scaleX := 1.0
	if boxW > 0 {
		scaleX = availW / boxW
	}
	scaleY := 1.0
	if boxH > 0 {
		scaleY = availH / boxH
	}
	// The smaller factor keeps aspect ratio and fits the whole network.
	v.BaseScale = scaleX
	if scaleY < scaleX {
		v.BaseScale = scaleY
	}

	v.OffX = float64(margin) + (availW-boxW*v.BaseScale)/2
	v.OffY = float64(margin) + (availH-boxH*v.BaseScale)/2
	return v
}

// Project maps a simulation point to final screen pixels. The vertical
// axis is inverted (simulation Y grows north, screen Y grows down). Zoom
// is multiplicative about the screen origin; pan is additive.
func (v *Viewport) Project(p netmap.Point) netmap.Point {
	sx := v.OffX + (p.X-v.Min.X)*v.BaseScale
	sy := float64(v.winH) - (v.OffY + (p.Y-v.Min.Y)*v.BaseScale)
	return netmap.Point{
		X: sx*v.Zoom + v.Pan.X,
		Y: sy*v.Zoom + v.Pan.Y,
	}
}

// NodePos returns the projected screen position of a junction. ok is
// false for unknown ids; callers skip rendering that entity.
func (v *Viewport) NodePos(id string) (netmap.Point, bool) {
	nd, ok := v.net.Node(id)
	if !ok {
		return netmap.Point{}, false
	}
	return v.Project(nd.Pos), true
}

// EdgeShape returns the projected polyline of a road segment. ok is false
// for unknown ids.
func (v *Viewport) EdgeShape(id string) ([]netmap.Point, bool) {
	e, ok := v.net.Edge(id)
	if !ok {
		return nil, false
	}
	out := make([]netmap.Point, len(e.Shape))
	for i, p := range e.Shape {
		out[i] = v.Project(p)
	}
	return out, true
}

// Network returns the topology this viewport projects.
func (v *Viewport) Network() *netmap.Network { return v.net }

// Size returns the window dimensions in pixels.
func (v *Viewport) Size() (int, int) { return v.winW, v.winH }

// PanBy nudges the view by the given screen-pixel deltas.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Pan.X += dx
	v.Pan.Y += dy
}

const zoomStep = 1.1

// ZoomIn magnifies the view by one step.
func (v *Viewport) ZoomIn() { v.Zoom *= zoomStep }

// ZoomOut shrinks the view by one step.
func (v *Viewport) ZoomOut() { v.Zoom /= zoomStep }
