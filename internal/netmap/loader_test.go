package netmap_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trafficviz/internal/netmap"
)

func writeNet(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.net.xml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleNet = `<?xml version="1.0" encoding="UTF-8"?>
<net>
  <junction id="A" type="priority" x="0.0" y="0.0"/>
  <junction id="B" type="priority" x="100.0" y="100.0"/>
  <junction id=":A_0" type="internal" x="1.0" y="1.0"/>
  <edge id="AB" from="A" to="B">
    <lane id="AB_0" shape="0.0,0.0 50.0,60.0 100.0,100.0"/>
    <lane id="AB_1" shape="0.0,2.0 100.0,102.0"/>
  </edge>
  <edge id="BA" from="B" to="A"/>
  <edge id=":A_0_0" function="internal">
    <lane id=":A_0_0_0" shape="1.0,1.0 2.0,2.0"/>
  </edge>
  <edge id="ghost" from="X" to="Y"/>
  <connection from="AB" to="BA" fromLane="0" toLane="0"/>
  <connection from=":A_0_0" to="BA" fromLane="0" toLane="0"/>
  <connection from="AB" to="nope" fromLane="0" toLane="0"/>
</net>`

func TestLoadSampleNetwork(t *testing.T) {
	net, err := netmap.Load(writeNet(t, sampleNet), zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, net.Nodes, 2, "internal junctions must be excluded")
	assert.Len(t, net.Edges, 3, "internal edges must be excluded")

	ab, ok := net.Edge("AB")
	require.True(t, ok)
	assert.Equal(t, "A", ab.From)
	assert.Equal(t, "B", ab.To)
	// Geometry comes from the first lane's explicit shape.
	require.Len(t, ab.Shape, 3)
	assert.Equal(t, netmap.Point{X: 50, Y: 60}, ab.Shape[1])

	// No lane shape: synthesized straight segment between endpoints.
	ba, ok := net.Edge("BA")
	require.True(t, ok)
	require.Len(t, ba.Shape, 2)
	assert.Equal(t, netmap.Point{X: 100, Y: 100}, ba.Shape[0])
	assert.Equal(t, netmap.Point{X: 0, Y: 0}, ba.Shape[1])

	// Unresolved endpoints: empty shape, no failure.
	ghost, ok := net.Edge("ghost")
	require.True(t, ok)
	assert.Empty(t, ghost.Shape)

	// Only the connection between two known non-internal edges survives.
	require.Len(t, net.Connections, 1)
	assert.Equal(t, "AB", net.Connections[0].FromEdge)
	assert.Equal(t, "BA", net.Connections[0].ToEdge)

	shape, ok := net.LaneShape("AB_1")
	require.True(t, ok)
	assert.Len(t, shape, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := netmap.Load(filepath.Join(t.TempDir(), "nowhere.net.xml"), zap.NewNop())
	assert.ErrorIs(t, err, netmap.ErrResourceNotFound)
}

func TestLoadMalformed(t *testing.T) {
	cases := map[string]string{
		"broken xml":        `<net><junction id="A"`,
		"junction position": `<net><junction id="A" x="abc" y="0"/></net>`,
		"junction no id":    `<net><junction x="0" y="0"/></net>`,
		"bad lane shape":    `<net><edge id="E"><lane id="E_0" shape="1,2 oops"/></edge></net>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := netmap.Load(writeNet(t, body), zap.NewNop())
			require.Error(t, err)
			var malformed *netmap.MalformedError
			assert.True(t, errors.As(err, &malformed), "want MalformedError, got %v", err)
		})
	}
}

func TestBounds(t *testing.T) {
	net, err := netmap.Load(writeNet(t, sampleNet), zap.NewNop())
	require.NoError(t, err)

	min, max, ok := net.Bounds()
	require.True(t, ok)
	assert.Equal(t, netmap.Point{X: 0, Y: 0}, min)
	assert.Equal(t, netmap.Point{X: 100, Y: 100}, max)
}

func TestBoundsEmpty(t *testing.T) {
	net := &netmap.Network{}
	_, _, ok := net.Bounds()
	assert.False(t, ok)
}
