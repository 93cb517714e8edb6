// Package engine defines the boundary to the external simulation engine.
// The engine owns stepping, vehicle physics, routing and signal-state
// computation; this module only pulls per-tick state through it.
package engine

import (
	"errors"
	"fmt"

	"trafficviz/internal/netmap"
)

// ErrUnavailable marks an engine session that could not be reached.
var ErrUnavailable = errors.New("engine unavailable")

// NotFoundError reports a failed per-entity attribute query. Callers must
// treat it as "skip this entity this frame", never as fatal.
type NotFoundError struct {
	Kind string // "vehicle", "signal", "lane"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Engine is the external simulation session. All methods except Start and
// Close refer to the state after the most recent StepOnce.
type Engine interface {
	// Start opens the session; fails with ErrUnavailable when the
	// underlying resource cannot be reached.
	Start() error
	// StepOnce advances the simulation by one tick.
	StepOnce() error

	VehicleIDs() []string
	VehiclePosition(id string) (netmap.Point, error)
	VehicleHeading(id string) (float64, error)
	VehicleType(id string) (string, error)
	VehicleSpeed(id string) (float64, error)
	VehicleWaitingTime(id string) (float64, error)

	SignalIDs() []string
	SignalState(id string) (string, error)
	// SignalControlledLanes returns the incoming lane ids controlled by a
	// signal, in link order.
	SignalControlledLanes(id string) ([]string, error)

	// ArrivedCount is the number of vehicles that reached their
	// destination during the last tick.
	ArrivedCount() int

	Close() error
}
