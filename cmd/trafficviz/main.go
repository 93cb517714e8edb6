package main

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"trafficviz/internal/config"
	"trafficviz/internal/engine/demo"
	"trafficviz/internal/export"
	"trafficviz/internal/glwin"
	"trafficviz/internal/netmap"
	"trafficviz/internal/pkg/logger"
	"trafficviz/internal/render"
	"trafficviz/internal/session"
	"trafficviz/internal/view"
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// idleInput drives headless runs: no panning, no quit.
type idleInput struct{}

func (idleInput) Poll() session.Input { return session.Input{} }

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	net, err := netmap.Load(cfg.Network.File, log)
	if err != nil {
		return fmt.Errorf("load network: %w", err)
	}
	log.Info("network loaded",
		zap.String("file", cfg.Network.File),
		zap.Int("junctions", len(net.Nodes)),
		zap.Int("edges", len(net.Edges)))

	vp := view.New(net, cfg.Window.Width, cfg.Window.Height, cfg.Window.Margin)
	rend := render.New(render.DefaultTheme(), log)
	eng := demo.New(net, uint64(cfg.Demo.Seed), cfg.Demo.Vehicles)

	var (
		surface render.Surface
		input   session.InputSource
	)
	if cfg.Run.Headless {
		surface = render.NewRecorder(cfg.Window.Width, cfg.Window.Height)
		input = idleInput{}
	} else {
		win, err := glwin.Open(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, log)
		if err != nil {
			return fmt.Errorf("open window: %w", err)
		}
		defer win.Close()
		surface = win.Surface()
		input = win.Input()
	}

	sess := session.New(eng, vp, rend, surface, input, log)
	sess.SetModeLabel(cfg.Run.ModeLabel)
	if err := sess.Run(cfg.Run.Steps, cfg.Run.StepDelay); err != nil {
		return err
	}

	st := sess.Stats()
	log.Info("run finished",
		zap.Int("steps", st.Steps),
		zap.Int("throughput", st.Throughput),
		zap.Float64("avg_speed", st.AvgSpeed))

	if cfg.Export.Enabled {
		srv := export.NewServer(st, net, log)
		if err := srv.Listen(cfg.Export.Addr); err != nil {
			return fmt.Errorf("export server: %w", err)
		}
	}

	return nil
}
