// Package web provides the real-time monitoring dashboard: REST endpoints
// for status and profiles plus websocket streams for state, alerts, and
// camera frames. It implements monitor.Sink.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-driveguard/internal/log"
	"github.com/teslashibe/go-driveguard/pkg/hub"
	"github.com/teslashibe/go-driveguard/pkg/monitor"
	"github.com/teslashibe/go-driveguard/pkg/profile"
)

// maxAlertBuffer caps the retained alert history for the REST endpoint.
const maxAlertBuffer = 100

// Server is the dashboard server.
type Server struct {
	app  *fiber.App
	port string

	driverID string
	profiles *profile.Store

	// Latest published state, for GET /api/status
	stateMu sync.RWMutex
	state   monitor.State

	// Recent alerts, for GET /api/alerts
	alertsMu sync.RWMutex
	alerts   []monitor.Alert

	// Hubs for websocket broadcast
	stateHub  *hub.Hub
	alertHub  *hub.Hub
	cameraHub *hub.Hub
}

// NewServer creates the dashboard server.
func NewServer(port, driverID string, profiles *profile.Store) *Server {
	s := &Server{
		port:      port,
		driverID:  driverID,
		profiles:  profiles,
		stateHub:  hub.New("state"),
		alertHub:  hub.New("alerts"),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "DriveGuard Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/alerts", s.handleAlerts)
	api.Get("/profile", s.handleProfile)
	api.Post("/profile/reset", s.handleProfileReset)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/alerts", websocket.New(s.handleAlertsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start starts the hubs and the HTTP listener. It blocks.
func (s *Server) Start() error {
	log.Info("dashboard listening", "port", s.port)

	go s.stateHub.Run()
	go s.alertHub.Run()
	go s.cameraHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PublishState caches and broadcasts a monitoring snapshot.
func (s *Server) PublishState(state monitor.State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()

	s.stateHub.BroadcastJSON(state)
}

// PublishAlert buffers and broadcasts a discrete notification.
func (s *Server) PublishAlert(alert monitor.Alert) {
	s.alertsMu.Lock()
	s.alerts = append(s.alerts, alert)
	if len(s.alerts) > maxAlertBuffer {
		s.alerts = s.alerts[1:]
	}
	s.alertsMu.Unlock()

	s.alertHub.BroadcastJSON(alert)
}

// PublishFrame broadcasts a camera frame to stream subscribers.
func (s *Server) PublishFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

var _ monitor.Sink = (*Server)(nil)
