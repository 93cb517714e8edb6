// Package export serves the finished run's statistics and topology over
// HTTP, for dashboards and offline analysis.
package export

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"trafficviz/internal/netmap"
	"trafficviz/internal/session"
)

// Server exposes a read-only snapshot of a completed session.
type Server struct {
	app   *fiber.App
	stats *session.Stats
	net   *netmap.Network
	log   *zap.Logger
}

type statsResponse struct {
	VehicleCount int     `json:"vehicle_count"`
	AvgSpeed     float64 `json:"avg_speed"`
	AvgWaiting   float64 `json:"avg_waiting"`
	Throughput   int     `json:"throughput"`
	Steps        int     `json:"steps"`
}

type seriesResponse struct {
	Speeds    []float64 `json:"speeds"`
	WaitTimes []float64 `json:"wait_times"`
	Arrivals  []int     `json:"arrivals"`
}

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type nodeJSON struct {
	ID  string    `json:"id"`
	Pos pointJSON `json:"pos"`
}

type edgeJSON struct {
	ID    string      `json:"id"`
	From  string      `json:"from"`
	To    string      `json:"to"`
	Shape []pointJSON `json:"shape"`
}

type topologyResponse struct {
	Nodes []nodeJSON `json:"nodes"`
	Edges []edgeJSON `json:"edges"`
}

// NewServer builds the export app around the session's final accumulator.
func NewServer(stats *session.Stats, net *netmap.Network, log *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "trafficviz export",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	s := &Server{app: app, stats: stats, net: net, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/stats", s.handleStats)
	s.app.Get("/series", s.handleSeries)
	s.app.Get("/topology", s.handleTopology)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(statsResponse{
		VehicleCount: s.stats.VehicleCount,
		AvgSpeed:     s.stats.AvgSpeed,
		AvgWaiting:   s.stats.AvgWaiting,
		Throughput:   s.stats.Throughput,
		Steps:        s.stats.Steps,
	})
}

func (s *Server) handleSeries(c *fiber.Ctx) error {
	return c.JSON(seriesResponse{
		Speeds:    s.stats.Series.Speeds,
		WaitTimes: s.stats.Series.WaitTimes,
		Arrivals:  s.stats.Series.Arrivals,
	})
}

func (s *Server) handleTopology(c *fiber.Ctx) error {
	resp := topologyResponse{
		Nodes: make([]nodeJSON, 0, len(s.net.Nodes)),
		Edges: make([]edgeJSON, 0, len(s.net.Edges)),
	}
	for _, n := range s.net.Nodes {
		resp.Nodes = append(resp.Nodes, nodeJSON{
			ID:  n.ID,
			Pos: pointJSON{X: n.Pos.X, Y: n.Pos.Y},
		})
	}
	for _, e := range s.net.Edges {
		shape := make([]pointJSON, 0, len(e.Shape))
		for _, p := range e.Shape {
			shape = append(shape, pointJSON{X: p.X, Y: p.Y})
		}
		resp.Edges = append(resp.Edges, edgeJSON{ID: e.ID, From: e.From, To: e.To, Shape: shape})
	}
	return c.JSON(resp)
}

// App exposes the underlying fiber app for in-process tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("export server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
