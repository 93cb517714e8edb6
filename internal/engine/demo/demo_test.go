package demo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficviz/internal/engine"
	"trafficviz/internal/engine/demo"
	"trafficviz/internal/netmap"
)

func gridNet() *netmap.Network {
	a := &netmap.Node{ID: "A", Pos: netmap.Point{X: 0, Y: 0}}
	b := &netmap.Node{ID: "B", Pos: netmap.Point{X: 200, Y: 0}}
	c := &netmap.Node{ID: "C", Pos: netmap.Point{X: 200, Y: 200}}
	return &netmap.Network{
		Nodes: map[string]*netmap.Node{"A": a, "B": b, "C": c},
		Edges: map[string]*netmap.Edge{
			"AB": {ID: "AB", From: "A", To: "B", Shape: []netmap.Point{a.Pos, b.Pos}},
			"BC": {ID: "BC", From: "B", To: "C", Shape: []netmap.Point{b.Pos, c.Pos}},
			"CA": {ID: "CA", From: "C", To: "A", Shape: []netmap.Point{c.Pos, a.Pos}},
		},
	}
}

func TestStartUnavailableOnEmptyNetwork(t *testing.T) {
	eng := demo.New(&netmap.Network{Edges: map[string]*netmap.Edge{}}, 1, 4)
	assert.ErrorIs(t, eng.Start(), engine.ErrUnavailable)
}

func TestDeterministicForSeed(t *testing.T) {
	run := func() []netmap.Point {
		eng := demo.New(gridNet(), 42, 6)
		require.NoError(t, eng.Start())
		for i := 0; i < 25; i++ {
			require.NoError(t, eng.StepOnce())
		}
		var out []netmap.Point
		for _, id := range eng.VehicleIDs() {
			p, err := eng.VehiclePosition(id)
			require.NoError(t, err)
			out = append(out, p)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestVehiclePopulationHeld(t *testing.T) {
	eng := demo.New(gridNet(), 7, 5)
	require.NoError(t, eng.Start())
	for i := 0; i < 60; i++ {
		require.NoError(t, eng.StepOnce())
		assert.Len(t, eng.VehicleIDs(), 5)
		assert.GreaterOrEqual(t, eng.ArrivedCount(), 0)
	}
}

func TestVehicleAttributes(t *testing.T) {
	eng := demo.New(gridNet(), 3, 3)
	require.NoError(t, eng.Start())
	require.NoError(t, eng.StepOnce())

	ids := eng.VehicleIDs()
	require.NotEmpty(t, ids)
	id := ids[0]

	p, err := eng.VehiclePosition(id)
	require.NoError(t, err)
	assert.True(t, p.X >= 0 && p.X <= 200)
	assert.True(t, p.Y >= 0 && p.Y <= 200)

	_, err = eng.VehicleHeading(id)
	require.NoError(t, err)

	tag, err := eng.VehicleType(id)
	require.NoError(t, err)
	assert.NotEmpty(t, tag)

	speed, err := eng.VehicleSpeed(id)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, speed, 0.0)

	wait, err := eng.VehicleWaitingTime(id)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, wait, 0.0)
}

func TestUnknownVehicleNotFound(t *testing.T) {
	eng := demo.New(gridNet(), 3, 1)
	require.NoError(t, eng.Start())

	_, err := eng.VehiclePosition("nope")
	var nf *engine.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestSignalStates(t *testing.T) {
	eng := demo.New(gridNet(), 3, 1)
	require.NoError(t, eng.Start())

	ids := eng.SignalIDs()
	require.Len(t, ids, 3, "one signal per junction with incoming edges")

	for _, id := range ids {
		state, err := eng.SignalState(id)
		require.NoError(t, err)
		require.NotEmpty(t, state)
		for i := 0; i < len(state); i++ {
			assert.Contains(t, "Gyr", string(state[i]))
		}

		lanes, err := eng.SignalControlledLanes(id)
		require.NoError(t, err)
		assert.Len(t, lanes, len(state))
	}

	_, err := eng.SignalState("nope")
	var nf *engine.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestSignalStateChangesOverCycle(t *testing.T) {
	eng := demo.New(gridNet(), 3, 1)
	require.NoError(t, eng.Start())
	id := eng.SignalIDs()[0]

	seen := map[byte]bool{}
	for i := 0; i < 48; i++ {
		require.NoError(t, eng.StepOnce())
		state, err := eng.SignalState(id)
		require.NoError(t, err)
		seen[state[0]] = true
	}
	assert.True(t, seen['G'] && seen['y'] && seen['r'], "full cycle seen: %v", seen)
}
