// Package demo is a small deterministic engine used for standalone runs:
// vehicles advance along edge polylines, hold at red signals and despawn
// at the segment end; signals cycle green/yellow/red on fixed timings. It
// stands in for the real external engine behind the same interface.
package demo

import (
	"fmt"
	"math"
	"sort"

	"trafficviz/internal/engine"
	"trafficviz/internal/netmap"
)

const (
	tickSeconds = 1.0
	greenTicks  = 20
	yellowTicks = 4
	cycleTicks  = greenTicks + yellowTicks + greenTicks + yellowTicks

	stopDistance = 8.0 // hold this close to a red signal
)

var typeTags = []string{
	"passenger", "passenger", "passenger", "passenger",
	"bus_city", "truck_heavy", "motorcycle", "bicycle", "ambulance",
}

type vehicle struct {
	id       string
	edgeIdx  int
	dist     float64 // along the edge polyline
	speed    float64
	maxSpeed float64
	typeTag  string
	waiting  float64
}

type edgeInfo struct {
	id     string
	shape  []netmap.Point
	length float64
	cum    []float64 // cumulative length at each shape point
	toNode string
}

// Engine is the built-in demo engine. Not safe for concurrent use; the
// session drives it from a single control thread.
type Engine struct {
	net      *netmap.Network
	rng      *rand
	started  bool
	tick     int
	edges    []edgeInfo
	vehicles map[string]*vehicle
	order    []string // deterministic id order
	nextID   int
	target   int
	arrived  int

	signals   []string
	sigOffset map[string]int
	incoming  map[string][]string // node id -> incoming edge ids, sorted
}

// New builds a demo engine over a loaded network.
func New(net *netmap.Network, seed uint64, vehicles int) *Engine {
	return &Engine{
		net:      net,
		rng:      newRand(seed),
		vehicles: make(map[string]*vehicle),
		target:   vehicles,
	}
}

// Start indexes the drivable edges and signal anchors. It fails with
// ErrUnavailable when the network has nothing to drive on.
func (e *Engine) Start() error {
	ids := make([]string, 0, len(e.net.Edges))
	for id := range e.net.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		edge := e.net.Edges[id]
		if len(edge.Shape) < 2 {
			continue
		}
		info := edgeInfo{id: id, shape: edge.Shape, toNode: edge.To}
		info.cum = make([]float64, len(edge.Shape))
		for i := 1; i < len(edge.Shape); i++ {
			d := math.Hypot(edge.Shape[i].X-edge.Shape[i-1].X, edge.Shape[i].Y-edge.Shape[i-1].Y)
			info.cum[i] = info.cum[i-1] + d
		}
		info.length = info.cum[len(info.cum)-1]
		if info.length <= 0 {
			continue
		}
		e.edges = append(e.edges, info)
	}
	if len(e.edges) == 0 {
		return fmt.Errorf("%w: no drivable edges", engine.ErrUnavailable)
	}

	e.incoming = make(map[string][]string)
	for _, info := range e.edges {
		if info.toNode != "" {
			e.incoming[info.toNode] = append(e.incoming[info.toNode], info.id)
		}
	}
	e.sigOffset = make(map[string]int)
	nodes := make([]string, 0, len(e.incoming))
	for id := range e.incoming {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)
	for i, id := range nodes {
		sort.Strings(e.incoming[id])
		e.signals = append(e.signals, id)
		e.sigOffset[id] = (i * 7) % cycleTicks
	}

	for len(e.vehicles) < e.target {
		e.spawn()
	}
	e.started = true
	return nil
}

func (e *Engine) spawn() {
	id := fmt.Sprintf("veh%d", e.nextID)
	e.nextID++
	edgeIdx := e.rng.intn(len(e.edges))
	v := &vehicle{
		id:       id,
		edgeIdx:  edgeIdx,
		dist:     e.rng.rangeF(0, e.edges[edgeIdx].length*0.5),
		maxSpeed: e.rng.rangeF(6, 14),
		typeTag:  typeTags[e.rng.intn(len(typeTags))],
	}
	v.speed = v.maxSpeed
	e.vehicles[id] = v
	e.order = append(e.order, id)
}

// StepOnce advances every vehicle by one tick and refills despawned ones.
func (e *Engine) StepOnce() error {
	e.tick++
	e.arrived = 0

	survivors := e.order[:0]
	for _, id := range e.order {
		v := e.vehicles[id]
		info := &e.edges[v.edgeIdx]

		held := e.redAhead(info, v.dist)
		if held {
			v.speed = 0
			v.waiting += tickSeconds
		} else {
			v.speed = v.maxSpeed
			v.waiting = 0
			v.dist += v.speed * tickSeconds
		}

		if v.dist >= info.length {
			delete(e.vehicles, id)
			e.arrived++
			continue
		}
		survivors = append(survivors, id)
	}
	e.order = survivors

	for len(e.vehicles) < e.target {
		e.spawn()
	}
	return nil
}

// redAhead reports whether the edge's end signal shows red within braking
// range of the given position.
func (e *Engine) redAhead(info *edgeInfo, dist float64) bool {
	if info.toNode == "" {
		return false
	}
	if info.length-dist > stopDistance {
		return false
	}
	state, err := e.SignalState(info.toNode)
	if err != nil {
		return false
	}
	for i, edgeID := range e.incoming[info.toNode] {
		if edgeID == info.id && i < len(state) {
			return state[i] == 'r' || state[i] == 'R'
		}
	}
	return false
}

func (e *Engine) VehicleIDs() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Engine) lookup(id string) (*vehicle, error) {
	v, ok := e.vehicles[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "vehicle", ID: id}
	}
	return v, nil
}

func (e *Engine) VehiclePosition(id string) (netmap.Point, error) {
	v, err := e.lookup(id)
	if err != nil {
		return netmap.Point{}, err
	}
	p, _ := e.pointAt(v)
	return p, nil
}

func (e *Engine) VehicleHeading(id string) (float64, error) {
	v, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	_, heading := e.pointAt(v)
	return heading, nil
}

// pointAt interpolates position and heading along the vehicle's polyline.
func (e *Engine) pointAt(v *vehicle) (netmap.Point, float64) {
	info := &e.edges[v.edgeIdx]
	d := v.dist
	for i := 1; i < len(info.shape); i++ {
		if d <= info.cum[i] || i == len(info.shape)-1 {
			a, b := info.shape[i-1], info.shape[i]
			segLen := info.cum[i] - info.cum[i-1]
			t := 0.0
			if segLen > 0 {
				t = (d - info.cum[i-1]) / segLen
			}
			p := netmap.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			heading := math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
			return p, heading
		}
	}
	return info.shape[0], 0
}

func (e *Engine) VehicleType(id string) (string, error) {
	v, err := e.lookup(id)
	if err != nil {
		return "", err
	}
	return v.typeTag, nil
}

func (e *Engine) VehicleSpeed(id string) (float64, error) {
	v, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	return v.speed, nil
}

func (e *Engine) VehicleWaitingTime(id string) (float64, error) {
	v, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	return v.waiting, nil
}

func (e *Engine) SignalIDs() []string {
	out := make([]string, len(e.signals))
	copy(out, e.signals)
	return out
}

// SignalState cycles each controlled link through green/yellow/red with a
// half-cycle offset between odd and even links.
func (e *Engine) SignalState(id string) (string, error) {
	links, ok := e.incoming[id]
	if !ok {
		return "", &engine.NotFoundError{Kind: "signal", ID: id}
	}
	phase := (e.tick + e.sigOffset[id]) % cycleTicks
	state := make([]byte, len(links))
	for i := range links {
		p := phase
		if i%2 == 1 {
			p = (phase + cycleTicks/2) % cycleTicks
		}
		switch {
		case p < greenTicks:
			state[i] = 'G'
		case p < greenTicks+yellowTicks:
			state[i] = 'y'
		default:
			state[i] = 'r'
		}
	}
	return string(state), nil
}

func (e *Engine) SignalControlledLanes(id string) ([]string, error) {
	links, ok := e.incoming[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "signal", ID: id}
	}
	lanes := make([]string, len(links))
	for i, edgeID := range links {
		lanes[i] = edgeID + "_0"
	}
	return lanes, nil
}

func (e *Engine) ArrivedCount() int { return e.arrived }

func (e *Engine) Close() error {
	e.started = false
	return nil
}
