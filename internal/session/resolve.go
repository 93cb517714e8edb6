package session

import (
	"sort"
	"strings"

	"trafficviz/internal/engine"
	"trafficviz/internal/netmap"
)

// AnchorKind tags how a signal's position was resolved.
type AnchorKind int

const (
	AnchorUnresolved AnchorKind = iota
	AnchorExact                 // signal id matches a junction id
	AnchorPrefix                // a junction id starts with the signal id
	AnchorGeometry              // last point of a controlled incoming lane
)

func (k AnchorKind) String() string {
	switch k {
	case AnchorExact:
		return "exact"
	case AnchorPrefix:
		return "prefix"
	case AnchorGeometry:
		return "geometry"
	default:
		return "unresolved"
	}
}

// SignalAnchor is a signal's resolved simulation-space position. An
// unresolved anchor means the signal is never drawn.
type SignalAnchor struct {
	Kind AnchorKind
	Pos  netmap.Point
}

// ResolveAnchor derives a signal's position with the ordered strategy
// exact match, then prefix match against junction ids, then the geometry
// of the first controlled incoming lane, then unresolved.
func ResolveAnchor(net *netmap.Network, eng engine.Engine, id string) SignalAnchor {
	if nd, ok := net.Node(id); ok {
		return SignalAnchor{Kind: AnchorExact, Pos: nd.Pos}
	}

	// Prefix scan in sorted order so ties resolve deterministically.
	ids := make([]string, 0, len(net.Nodes))
	for nodeID := range net.Nodes {
		ids = append(ids, nodeID)
	}
	sort.Strings(ids)
	for _, nodeID := range ids {
		if strings.HasPrefix(nodeID, id) {
			return SignalAnchor{Kind: AnchorPrefix, Pos: net.Nodes[nodeID].Pos}
		}
	}

	if lanes, err := eng.SignalControlledLanes(id); err == nil {
		for _, lane := range lanes {
			if shape, ok := net.LaneShape(lane); ok && len(shape) > 0 {
				// The last lane point sits closest to the junction.
				return SignalAnchor{Kind: AnchorGeometry, Pos: shape[len(shape)-1]}
			}
		}
	}

	return SignalAnchor{Kind: AnchorUnresolved}
}
