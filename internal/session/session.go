// Package session owns the per-frame sequence of a live run: advance the
// external engine one tick, pull a state snapshot, update statistics,
// process input, redraw all layers and present the frame.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trafficviz/internal/engine"
	"trafficviz/internal/render"
	"trafficviz/internal/view"
)

// State is the session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateStarted
	StateClosed
)

// Session orchestrates one run from Start to Close. All mutation happens
// on the single control thread that calls Step.
type Session struct {
	eng     engine.Engine
	vp      *view.Viewport
	rend    *render.Renderer
	surface render.Surface
	input   InputSource
	log     *zap.Logger

	id    string
	state State
	mode  string

	showIDs   bool
	showSpeed bool
	showWait  bool

	anchors map[string]SignalAnchor
	stats   Stats
}

// New wires a session. Nothing touches the engine until Start.
func New(eng engine.Engine, vp *view.Viewport, rend *render.Renderer, surface render.Surface, input InputSource, log *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		eng:     eng,
		vp:      vp,
		rend:    rend,
		surface: surface,
		input:   input,
		log:     log.With(zap.String("session", id)),
		id:      id,
		mode:    "Fixed Timing",
		anchors: map[string]SignalAnchor{},
	}
}

// ID returns the unique id tagging this run.
func (s *Session) ID() string { return s.id }

// SetModeLabel sets the cosmetic mode line shown in the overlay.
func (s *Session) SetModeLabel(text string) { s.mode = text }

// Stats exposes the accumulator; read it after the run for downstream
// aggregation.
func (s *Session) Stats() *Stats { return &s.stats }

// Anchor returns the resolved anchor for a signal id.
func (s *Session) Anchor(id string) (SignalAnchor, bool) {
	a, ok := s.anchors[id]
	return a, ok
}

// Start opens the engine session and resolves every signal's anchor.
func (s *Session) Start() error {
	if s.state != StateUninitialized {
		return fmt.Errorf("session already %v", s.state)
	}
	if err := s.eng.Start(); err != nil {
		s.state = StateClosed
		return fmt.Errorf("start engine: %w", err)
	}

	resolved := 0
	for _, id := range s.eng.SignalIDs() {
		anchor := ResolveAnchor(s.vp.Network(), s.eng, id)
		s.anchors[id] = anchor
		if anchor.Kind == AnchorUnresolved {
			s.log.Warn("signal position unresolved, will not be drawn", zap.String("signal", id))
			continue
		}
		resolved++
	}
	s.log.Info("session started",
		zap.Int("signals", len(s.anchors)),
		zap.Int("resolved", resolved))

	s.state = StateStarted
	return nil
}

// Step runs one tick-and-frame iteration. The returned flag is false when
// the loop must stop (quit input or closed session). The engine is always
// advanced strictly before the frame is rendered, so a frame reflects the
// post-step state for its tick.
func (s *Session) Step(delay time.Duration) bool {
	if s.state != StateStarted {
		return false
	}

	if delay > 0 {
		time.Sleep(delay)
	}

	if err := s.eng.StepOnce(); err != nil {
		s.log.Error("engine step failed", zap.Error(err))
		s.Close()
		return false
	}

	vehicles := s.collectVehicles()
	s.stats.update(vehicles, s.eng.ArrivedCount())

	in := s.input.Poll()
	if in.Quit {
		s.Close()
		return false
	}
	s.applyInput(in)

	s.renderFrame(vehicles)
	return true
}

func (s *Session) applyInput(in Input) {
	if in.PanX != 0 || in.PanY != 0 {
		s.vp.PanBy(in.PanX, in.PanY)
	}
	if in.ZoomIn {
		s.vp.ZoomIn()
	}
	if in.ZoomOut {
		s.vp.ZoomOut()
	}
	if in.ToggleIDs {
		s.showIDs = !s.showIDs
	}
	if in.ToggleSpeed {
		s.showSpeed = !s.showSpeed
	}
	if in.ToggleWait {
		s.showWait = !s.showWait
	}
}

// collectVehicles pulls a snapshot per vehicle. A failed attribute lookup
// skips that vehicle for this frame and never aborts the frame.
func (s *Session) collectVehicles() []render.VehicleSnapshot {
	ids := s.eng.VehicleIDs()
	out := make([]render.VehicleSnapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := s.vehicleSnapshot(id)
		if err != nil {
			s.log.Warn("skipping vehicle this frame", zap.String("vehicle", id), zap.Error(err))
			continue
		}
		out = append(out, snap)
	}
	return out
}

func (s *Session) vehicleSnapshot(id string) (render.VehicleSnapshot, error) {
	pos, err := s.eng.VehiclePosition(id)
	if err != nil {
		return render.VehicleSnapshot{}, err
	}
	heading, err := s.eng.VehicleHeading(id)
	if err != nil {
		return render.VehicleSnapshot{}, err
	}
	tag, err := s.eng.VehicleType(id)
	if err != nil {
		return render.VehicleSnapshot{}, err
	}
	speed, err := s.eng.VehicleSpeed(id)
	if err != nil {
		return render.VehicleSnapshot{}, err
	}
	waiting, err := s.eng.VehicleWaitingTime(id)
	if err != nil {
		return render.VehicleSnapshot{}, err
	}
	return render.VehicleSnapshot{
		ID:       id,
		Pos:      pos,
		Heading:  heading,
		Category: render.CategoryForType(tag),
		Speed:    speed,
		Waiting:  waiting,
	}, nil
}

// renderFrame redraws all layers in the fixed order network, vehicles,
// signals, junctions, overlay.
func (s *Session) renderFrame(vehicles []render.VehicleSnapshot) {
	s.surface.Clear(s.rend.Theme().Background)

	s.rend.DrawNetwork(s.surface, s.vp)

	for _, v := range vehicles {
		s.rend.DrawVehicle(s.surface, s.vp, v, s.vehicleLabel(v))
	}

	for _, id := range s.eng.SignalIDs() {
		anchor, ok := s.anchors[id]
		if !ok || anchor.Kind == AnchorUnresolved {
			continue
		}
		state, err := s.eng.SignalState(id)
		if err != nil {
			s.log.Warn("skipping signal this frame", zap.String("signal", id), zap.Error(err))
			continue
		}
		s.rend.DrawTrafficLight(s.surface, s.vp, render.SignalSnapshot{
			ID:    id,
			Pos:   anchor.Pos,
			State: state,
		})
	}

	for id := range s.vp.Network().Nodes {
		s.rend.DrawJunction(s.surface, s.vp, id)
	}

	s.rend.DrawOverlay(s.surface, s.overlayLines())
	s.surface.Present()
}

func (s *Session) vehicleLabel(v render.VehicleSnapshot) string {
	label := ""
	if s.showIDs {
		label = v.ID
	}
	if s.showSpeed {
		label += fmt.Sprintf(" %.1fm/s", v.Speed)
	}
	if s.showWait && v.Waiting > 0 {
		label += fmt.Sprintf(" %.0fs", v.Waiting)
	}
	return label
}

func (s *Session) overlayLines() []string {
	return []string{
		fmt.Sprintf("Vehicles: %d", s.stats.VehicleCount),
		fmt.Sprintf("Avg Speed: %.2f m/s", s.stats.AvgSpeed),
		fmt.Sprintf("Avg Wait Time: %.2f s", s.stats.AvgWaiting),
		fmt.Sprintf("Throughput: %d", s.stats.Throughput),
		fmt.Sprintf("Step: %d", s.stats.Steps),
		fmt.Sprintf("Mode: %s", s.mode),
	}
}

// Run starts the session, steps it up to steps times or until the
// continuation flag goes false, then closes.
func (s *Session) Run(steps int, delay time.Duration) error {
	if err := s.Start(); err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		if !s.Step(delay) {
			break
		}
	}
	s.Close()
	return nil
}

// Close releases the engine session and the drawing surface. Idempotent.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	if err := s.eng.Close(); err != nil {
		s.log.Warn("engine close", zap.Error(err))
	}
	if closer, ok := s.surface.(interface{ Close() }); ok {
		closer.Close()
	}
	s.log.Info("session closed",
		zap.Int("steps", s.stats.Steps),
		zap.Int("throughput", s.stats.Throughput))
}
