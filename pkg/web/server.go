// Package web provides the live monitoring dashboard: REST control of the
// capture run, websocket feeds for frames and status, the session report
// chart and the CSV export.
package web

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/aforolabs/go-aforo/internal/log"
	"github.com/aforolabs/go-aforo/pkg/hub"
	"github.com/aforolabs/go-aforo/pkg/monitor"
)

//go:embed index.html
var indexHTML []byte

// Server is the dashboard web server.
type Server struct {
	app  *fiber.App
	port string

	monitor  *monitor.Monitor
	defaults monitor.Config

	frameHub  *hub.Hub
	statusHub *hub.Hub
}

// NewServer wires the dashboard around a monitor. The defaults config seeds
// session parameters not supplied in the start request.
func NewServer(port string, m *monitor.Monitor, defaults monitor.Config) *Server {
	s := &Server{
		port:      port,
		monitor:   m,
		defaults:  defaults,
		frameHub:  hub.New("frames"),
		statusHub: hub.New("status"),
	}

	// The monitor pushes annotated frames and status snapshots; the hubs
	// fan them out to dashboard clients.
	m.OnFrame = s.frameHub.BroadcastBinary
	m.OnStatus = func(st monitor.Status) { s.statusHub.BroadcastJSON(st) }

	app := fiber.New(fiber.Config{
		AppName:               "Aforo Dashboard",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/session/start", s.handleStart)
	api.Post("/session/stop", s.handleStop)
	api.Post("/session/clear", s.handleClear)
	api.Get("/samples", s.handleSamples)

	app.Get("/report", s.handleReport)
	app.Get("/export", s.handleExport)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/camera", websocket.New(s.handleFrameWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start runs the hubs and listens on the configured port. It blocks.
func (s *Server) Start() error {
	go s.frameHub.Run()
	go s.statusHub.Run()

	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync runs the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleFrameWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}

func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Send the current snapshot before joining the broadcast feed
	c.WriteJSON(s.monitor.Status())
	hub.NewClient(s.statusHub, c).Run()
}
