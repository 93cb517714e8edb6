package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trafficviz/internal/engine"
	"trafficviz/internal/netmap"
	"trafficviz/internal/render"
	"trafficviz/internal/session"
	"trafficviz/internal/view"
)

type fakeVehicle struct {
	pos     netmap.Point
	heading float64
	typeTag string
	speed   float64
	waiting float64
}

// fakeEngine is a scripted engine for orchestrator tests.
type fakeEngine struct {
	startErr error
	stepErr  error

	order    []string
	vehicles map[string]fakeVehicle
	broken   map[string]bool // attribute lookups fail

	signals    []string
	states     map[string]string
	stateFails map[string]bool
	lanes      map[string][]string

	arrivals []int
	step     int
	closes   int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		vehicles:   map[string]fakeVehicle{},
		broken:     map[string]bool{},
		states:     map[string]string{},
		stateFails: map[string]bool{},
		lanes:      map[string][]string{},
	}
}

func (f *fakeEngine) Start() error { return f.startErr }

func (f *fakeEngine) StepOnce() error {
	if f.stepErr != nil {
		return f.stepErr
	}
	f.step++
	return nil
}

func (f *fakeEngine) VehicleIDs() []string { return f.order }

func (f *fakeEngine) attr(id string) (fakeVehicle, error) {
	if f.broken[id] {
		return fakeVehicle{}, &engine.NotFoundError{Kind: "vehicle", ID: id}
	}
	v, ok := f.vehicles[id]
	if !ok {
		return fakeVehicle{}, &engine.NotFoundError{Kind: "vehicle", ID: id}
	}
	return v, nil
}

func (f *fakeEngine) VehiclePosition(id string) (netmap.Point, error) {
	v, err := f.attr(id)
	return v.pos, err
}

func (f *fakeEngine) VehicleHeading(id string) (float64, error) {
	v, err := f.attr(id)
	return v.heading, err
}

func (f *fakeEngine) VehicleType(id string) (string, error) {
	v, err := f.attr(id)
	return v.typeTag, err
}

func (f *fakeEngine) VehicleSpeed(id string) (float64, error) {
	v, err := f.attr(id)
	return v.speed, err
}

func (f *fakeEngine) VehicleWaitingTime(id string) (float64, error) {
	v, err := f.attr(id)
	return v.waiting, err
}

func (f *fakeEngine) SignalIDs() []string { return f.signals }

func (f *fakeEngine) SignalState(id string) (string, error) {
	if f.stateFails[id] {
		return "", &engine.NotFoundError{Kind: "signal", ID: id}
	}
	return f.states[id], nil
}

func (f *fakeEngine) SignalControlledLanes(id string) ([]string, error) {
	lanes, ok := f.lanes[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "signal", ID: id}
	}
	return lanes, nil
}

func (f *fakeEngine) ArrivedCount() int {
	if f.step == 0 || f.step > len(f.arrivals) {
		return 0
	}
	return f.arrivals[f.step-1]
}

func (f *fakeEngine) Close() error {
	f.closes++
	return nil
}

// scriptInput replays a fixed list of input events, then idles.
type scriptInput struct {
	events []session.Input
	i      int
}

func (s *scriptInput) Poll() session.Input {
	if s.i >= len(s.events) {
		return session.Input{}
	}
	in := s.events[s.i]
	s.i++
	return in
}

func sessionNet() *netmap.Network {
	a := &netmap.Node{ID: "J1", Pos: netmap.Point{X: 0, Y: 0}}
	b := &netmap.Node{ID: "J2", Pos: netmap.Point{X: 100, Y: 100}}
	return &netmap.Network{
		Nodes: map[string]*netmap.Node{"J1": a, "J2": b},
		Edges: map[string]*netmap.Edge{
			"E1": {ID: "E1", From: "J1", To: "J2", Shape: []netmap.Point{a.Pos, b.Pos}},
		},
		Lanes: map[string][]netmap.Point{
			"E1_0": {{X: 0, Y: 0}, {X: 90, Y: 90}},
		},
	}
}

type fixture struct {
	eng *fakeEngine
	rec *render.Recorder
	in  *scriptInput
	s   *session.Session
}

func newFixture(eng *fakeEngine, events ...session.Input) *fixture {
	net := sessionNet()
	vp := view.New(net, 800, 600, 50)
	rec := render.NewRecorder(800, 600)
	in := &scriptInput{events: events}
	s := session.New(eng, vp, render.New(render.DefaultTheme(), zap.NewNop()), rec, in, zap.NewNop())
	return &fixture{eng: eng, rec: rec, in: in, s: s}
}

func TestThroughputAccumulation(t *testing.T) {
	eng := newFakeEngine()
	eng.arrivals = []int{0, 1, 0, 2, 0}

	f := newFixture(eng)
	require.NoError(t, f.s.Run(5, 0))

	st := f.s.Stats()
	assert.Equal(t, 3, st.Throughput)
	assert.Equal(t, 5, st.Steps)
	assert.Len(t, st.Series.Arrivals, 5)
	assert.Len(t, st.Series.Speeds, 5)
	assert.Len(t, st.Series.WaitTimes, 5)
	assert.Equal(t, 1, eng.closes)
}

func TestStartEngineUnavailable(t *testing.T) {
	eng := newFakeEngine()
	eng.startErr = engine.ErrUnavailable

	f := newFixture(eng)
	err := f.s.Run(5, 0)
	assert.ErrorIs(t, err, engine.ErrUnavailable)
	assert.False(t, f.s.Step(0), "failed session must not step")
}

func TestVehicleLookupFailureSkipsEntityOnly(t *testing.T) {
	eng := newFakeEngine()
	eng.order = []string{"ok", "bad"}
	eng.vehicles["ok"] = fakeVehicle{pos: netmap.Point{X: 50, Y: 50}, speed: 2, typeTag: "passenger"}
	eng.broken["bad"] = true

	f := newFixture(eng)
	require.NoError(t, f.s.Start())
	assert.True(t, f.s.Step(0), "frame must continue after a per-entity failure")

	st := f.s.Stats()
	assert.Equal(t, 1, st.VehicleCount, "failed vehicle excluded from the frame and stats")
	assert.Equal(t, 1, f.rec.CountOf(render.OpPresent), "frame still presented")
}

func TestStatsFreshAverages(t *testing.T) {
	eng := newFakeEngine()
	eng.order = []string{"a", "b"}
	eng.vehicles["a"] = fakeVehicle{speed: 2, waiting: 10, typeTag: "passenger"}
	eng.vehicles["b"] = fakeVehicle{speed: 4, waiting: 30, typeTag: "bus"}

	f := newFixture(eng)
	require.NoError(t, f.s.Start())
	require.True(t, f.s.Step(0))

	st := f.s.Stats()
	assert.InDelta(t, 3.0, st.AvgSpeed, 1e-9)
	assert.InDelta(t, 20.0, st.AvgWaiting, 1e-9)

	// Vehicles leave: averages recompute from scratch, throughput keeps.
	eng.order = nil
	require.True(t, f.s.Step(0))
	assert.Zero(t, f.s.Stats().AvgSpeed)
	assert.Zero(t, f.s.Stats().AvgWaiting)
}

func TestUnresolvedSignalNotDrawnButSessionContinues(t *testing.T) {
	eng := newFakeEngine()
	eng.signals = []string{"phantom"}
	eng.stateFails["phantom"] = true
	// No node match, no lanes: anchor stays unresolved.

	f := newFixture(eng)
	require.NoError(t, f.s.Start())

	anchor, ok := f.s.Anchor("phantom")
	require.True(t, ok)
	assert.Equal(t, session.AnchorUnresolved, anchor.Kind)

	assert.True(t, f.s.Step(0))
	assert.Equal(t, 0, f.rec.CountOf(render.OpFillRect), "no signal panel drawn")
	assert.True(t, f.s.Step(0), "session continues to the next step")
}

func TestSignalStateFailureSkipsSignal(t *testing.T) {
	eng := newFakeEngine()
	eng.signals = []string{"J1"}
	eng.stateFails["J1"] = true

	f := newFixture(eng)
	require.NoError(t, f.s.Start())

	anchor, _ := f.s.Anchor("J1")
	assert.Equal(t, session.AnchorExact, anchor.Kind)

	assert.True(t, f.s.Step(0))
	assert.Equal(t, 0, f.rec.CountOf(render.OpFillRect))
}

func TestQuitInputClosesSession(t *testing.T) {
	eng := newFakeEngine()
	f := newFixture(eng, session.Input{}, session.Input{Quit: true})

	require.NoError(t, f.s.Start())
	assert.True(t, f.s.Step(0))
	assert.False(t, f.s.Step(0), "quit input stops the loop")
	assert.Equal(t, 1, eng.closes)

	// Close is idempotent.
	f.s.Close()
	assert.Equal(t, 1, eng.closes)
}

func TestDrawOrder(t *testing.T) {
	eng := newFakeEngine()
	eng.order = []string{"v"}
	eng.vehicles["v"] = fakeVehicle{pos: netmap.Point{X: 10, Y: 10}, typeTag: "truck"}
	eng.signals = []string{"J2"}
	eng.states["J2"] = "Gr"

	f := newFixture(eng)
	require.NoError(t, f.s.Start())
	require.True(t, f.s.Step(0))

	network := f.rec.FirstIndexOf(render.OpLine)
	vehicle := f.rec.FirstIndexOf(render.OpFillQuad)
	signal := f.rec.FirstIndexOf(render.OpFillRect)
	require.GreaterOrEqual(t, network, 0)
	require.Greater(t, vehicle, network, "vehicles draw over the network")
	require.Greater(t, signal, vehicle, "signals draw over vehicles")

	last := f.rec.Calls[len(f.rec.Calls)-1]
	assert.Equal(t, render.OpPresent, last.Op)
	overlay := f.rec.Calls[len(f.rec.Calls)-2]
	assert.Equal(t, render.OpText, overlay.Op, "overlay is the final layer before present")
}

func TestInputTogglesAndPanZoom(t *testing.T) {
	eng := newFakeEngine()
	eng.order = []string{"v"}
	eng.vehicles["v"] = fakeVehicle{pos: netmap.Point{X: 10, Y: 10}, typeTag: "passenger"}

	f := newFixture(eng,
		session.Input{ToggleIDs: true, PanX: 20, ZoomIn: true},
		session.Input{},
	)
	require.NoError(t, f.s.Start())

	require.True(t, f.s.Step(0))
	withLabel := f.rec.CountOf(render.OpText)

	require.True(t, f.s.Step(0))
	stillOn := f.rec.CountOf(render.OpText)
	assert.Equal(t, withLabel, stillOn, "toggle latches until pressed again")

	// Overlay has 6 lines; the vehicle label is the extra text call.
	assert.Equal(t, 6+1, withLabel)
}

func TestRunStopsAtBudget(t *testing.T) {
	eng := newFakeEngine()
	f := newFixture(eng)
	require.NoError(t, f.s.Run(3, 0))
	assert.Equal(t, 3, f.s.Stats().Steps)
}
