package netmap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrResourceNotFound marks a missing network description file.
var ErrResourceNotFound = errors.New("network resource not found")

// MalformedError reports a network description whose structural fields
// could not be parsed.
type MalformedError struct {
	Detail string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed topology: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("malformed topology: %s", e.Detail)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// internalPrefix marks junctions/edges that are implementation artifacts
// of the source format and must not be exposed to rendering.
const internalPrefix = ":"

type xmlNet struct {
	Junctions   []xmlJunction   `xml:"junction"`
	Edges       []xmlEdge       `xml:"edge"`
	Connections []xmlConnection `xml:"connection"`
}

type xmlJunction struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
	X    string `xml:"x,attr"`
	Y    string `xml:"y,attr"`
}

type xmlEdge struct {
	ID       string    `xml:"id,attr"`
	From     string    `xml:"from,attr"`
	To       string    `xml:"to,attr"`
	Function string    `xml:"function,attr"`
	Lanes    []xmlLane `xml:"lane"`
}

type xmlLane struct {
	ID    string `xml:"id,attr"`
	Shape string `xml:"shape,attr"`
}

type xmlConnection struct {
	From     string `xml:"from,attr"`
	To       string `xml:"to,attr"`
	FromLane string `xml:"fromLane,attr"`
	ToLane   string `xml:"toLane,attr"`
}

// Load parses the network description at path. Internal junctions and
// edges are excluded from the exposed sets. Malformed connections are
// dropped with a log line; malformed junctions or edges are fatal.
func Load(path string, log *zap.Logger) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
		}
		return nil, fmt.Errorf("read network %s: %w", path, err)
	}

	var doc xmlNet
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedError{Detail: path, Err: err}
	}

	net := &Network{
		Nodes: make(map[string]*Node),
		Edges: make(map[string]*Edge),
		Lanes: make(map[string][]Point),
	}

	for _, j := range doc.Junctions {
		if j.Type == "internal" || strings.HasPrefix(j.ID, internalPrefix) {
			continue
		}
		if j.ID == "" {
			return nil, &MalformedError{Detail: "junction without id"}
		}
		x, errX := strconv.ParseFloat(j.X, 64)
		y, errY := strconv.ParseFloat(j.Y, 64)
		if errX != nil || errY != nil {
			return nil, &MalformedError{Detail: fmt.Sprintf("junction %q position", j.ID)}
		}
		net.Nodes[j.ID] = &Node{ID: j.ID, Pos: Point{X: x, Y: y}}
	}

	for _, e := range doc.Edges {
		if e.Function == "internal" || strings.HasPrefix(e.ID, internalPrefix) {
			continue
		}
		if e.ID == "" {
			return nil, &MalformedError{Detail: "edge without id"}
		}

		edge := &Edge{ID: e.ID, From: e.From, To: e.To}
		for _, ln := range e.Lanes {
			if ln.Shape == "" {
				continue
			}
			shape, err := parseShape(ln.Shape)
			if err != nil {
				return nil, &MalformedError{Detail: fmt.Sprintf("lane %q shape", ln.ID), Err: err}
			}
			if ln.ID != "" {
				net.Lanes[ln.ID] = shape
			}
			if edge.Shape == nil {
				// Geometry is taken from the first lane with an explicit shape.
				edge.Shape = shape
			}
		}
		if edge.Shape == nil {
			from, okFrom := net.Nodes[e.From]
			to, okTo := net.Nodes[e.To]
			if okFrom && okTo {
				edge.Shape = []Point{from.Pos, to.Pos}
			}
			// Unresolved endpoints leave the shape empty; the renderer
			// skips such segments.
		}
		net.Edges[e.ID] = edge
	}

	for _, c := range doc.Connections {
		if strings.HasPrefix(c.From, internalPrefix) || strings.HasPrefix(c.To, internalPrefix) {
			continue
		}
		if _, ok := net.Edges[c.From]; !ok {
			log.Debug("dropping connection from unknown edge", zap.String("edge", c.From))
			continue
		}
		if _, ok := net.Edges[c.To]; !ok {
			log.Debug("dropping connection to unknown edge", zap.String("edge", c.To))
			continue
		}
		fromLane, errF := strconv.Atoi(c.FromLane)
		toLane, errT := strconv.Atoi(c.ToLane)
		if errF != nil || errT != nil {
			log.Warn("dropping connection with unparseable lane index",
				zap.String("from", c.From), zap.String("to", c.To))
			continue
		}
		net.Connections = append(net.Connections, Connection{
			FromEdge: c.From,
			ToEdge:   c.To,
			FromLane: fromLane,
			ToLane:   toLane,
		})
	}

	log.Info("network loaded",
		zap.String("path", path),
		zap.Int("nodes", len(net.Nodes)),
		zap.Int("edges", len(net.Edges)),
		zap.Int("connections", len(net.Connections)))
	return net, nil
}

// parseShape parses "x1,y1 x2,y2 ..." into points.
func parseShape(s string) ([]Point, error) {
	fields := strings.Fields(s)
	pts := make([]Point, 0, len(fields))
	for _, f := range fields {
		xy := strings.Split(f, ",")
		if len(xy) < 2 {
			return nil, fmt.Errorf("shape point %q", f)
		}
		x, errX := strconv.ParseFloat(xy[0], 64)
		y, errY := strconv.ParseFloat(xy[1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("shape point %q", f)
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts, nil
}
