// Package web serves the mirror's viewer page and streams composited
// frames and session status over websockets.
package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/glitchmirror/internal/log"
	"github.com/teslashibe/glitchmirror/pkg/hub"
	"github.com/teslashibe/glitchmirror/pkg/mirror"
	"github.com/teslashibe/glitchmirror/pkg/scene"
)

// Server exposes the viewer page, the status API, and the frame stream.
type Server struct {
	app  *fiber.App
	port string

	frameHub  *hub.Hub
	statusHub *hub.Hub

	// StatusFunc returns the current session status snapshot.
	StatusFunc func() mirror.Status

	// SceneFunc returns the current scene parameters.
	SceneFunc func() *scene.State
}

// NewServer creates the server and registers its routes.
func NewServer(port string) *Server {
	s := &Server{
		port:      port,
		frameHub:  hub.New("frames"),
		statusHub: hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "glitchmirror",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/scene", s.handleScene)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start runs the hubs and listens. Blocks until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	go s.frameHub.Run(ctx)
	go s.statusHub.Run(ctx)

	log.Info("viewer listening", "addr", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// SendFrame broadcasts one encoded composited frame to all viewers.
func (s *Server) SendFrame(jpeg []byte) {
	s.frameHub.BroadcastBinary(jpeg)
}

// SendStatus broadcasts a status snapshot to status subscribers.
func (s *Server) SendStatus(st mirror.Status) {
	if err := s.statusHub.BroadcastJSON(st); err != nil {
		log.Warn("status broadcast failed", "error", err)
	}
}

// ViewerCount returns the number of connected frame viewers.
func (s *Server) ViewerCount() int {
	return s.frameHub.ClientCount()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
