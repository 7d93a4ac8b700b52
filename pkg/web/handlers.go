package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-driveguard/pkg/hub"
	"github.com/teslashibe/go-driveguard/pkg/monitor"
)

// handleStatus returns the latest monitoring snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	state := s.state
	s.stateMu.RUnlock()
	return c.JSON(state)
}

// handleAlerts returns the recent alert buffer, newest last.
func (s *Server) handleAlerts(c *fiber.Ctx) error {
	s.alertsMu.RLock()
	alerts := make([]monitor.Alert, len(s.alerts))
	copy(alerts, s.alerts)
	s.alertsMu.RUnlock()
	return c.JSON(alerts)
}

// handleProfile returns the driver's persisted profile document.
func (s *Server) handleProfile(c *fiber.Ctx) error {
	driverID := c.Query("driver", s.driverID)
	return c.JSON(s.profiles.Load(driverID))
}

// handleProfileReset deletes the driver's profile. The next session starts
// from catalog defaults.
func (s *Server) handleProfileReset(c *fiber.Ctx) error {
	driverID := c.Query("driver", s.driverID)
	if err := s.profiles.Reset(driverID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"reset": driverID})
}

// Websocket handlers: each connection gets a hub client whose pumps run
// until the connection closes.

func (s *Server) handleStateWS(conn *websocket.Conn) {
	hub.NewClient(s.stateHub, conn).Run()
}

func (s *Server) handleAlertsWS(conn *websocket.Conn) {
	hub.NewClient(s.alertHub, conn).Run()
}

func (s *Server) handleCameraWS(conn *websocket.Conn) {
	hub.NewClient(s.cameraHub, conn).Run()
}
