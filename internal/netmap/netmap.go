// Package netmap loads a road-network description into an immutable
// in-memory graph of junctions, directed road segments and lane-level
// connections.
package netmap

// Point is a coordinate in simulation space (Y grows northward).
type Point struct {
	X, Y float64
}

// Node is a junction in the network.
type Node struct {
	ID  string
	Pos Point
}

// Edge is a directed road segment between two junctions. Shape is the
// polyline geometry of the segment; it may be empty when neither an
// explicit lane shape nor both endpoint junctions are known.
type Edge struct {
	ID    string
	From  string
	To    string
	Shape []Point
}

// Connection is a lane-level continuity between two edges. It is not used
// for rendering geometry but retained for completeness and queries.
type Connection struct {
	FromEdge string
	ToEdge   string
	FromLane int
	ToLane   int
}

// Network is the loaded topology. Immutable after Load; safe for
// concurrent readers.
type Network struct {
	Nodes       map[string]*Node
	Edges       map[string]*Edge
	Lanes       map[string][]Point // lane id -> explicit shape, when given
	Connections []Connection
}

// Node returns the junction with the given id.
func (n *Network) Node(id string) (*Node, bool) {
	nd, ok := n.Nodes[id]
	return nd, ok
}

// Edge returns the road segment with the given id.
func (n *Network) Edge(id string) (*Edge, bool) {
	e, ok := n.Edges[id]
	return e, ok
}

// LaneShape returns the explicit shape of a lane, when the description
// carried one.
func (n *Network) LaneShape(id string) ([]Point, bool) {
	s, ok := n.Lanes[id]
	return s, ok
}

// Bounds returns the bounding box over every node position and every edge
// shape point. ok is false for a network with no coordinates at all.
func (n *Network) Bounds() (min, max Point, ok bool) {
	first := true
	grow := func(p Point) {
		if first {
			min, max = p, p
			first = false
			return
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	for _, nd := range n.Nodes {
		grow(nd.Pos)
	}
	for _, e := range n.Edges {
		for _, p := range e.Shape {
			grow(p)
		}
	}
	return min, max, !first
}
