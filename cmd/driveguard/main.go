// DriveGuard - real-time driver fatigue and distraction monitoring.
// Watches a camera feed for eye closure, yawning, head turns, and face
// loss, and delivers adaptive interventions that learn per-driver.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-driveguard/internal/config"
	"github.com/teslashibe/go-driveguard/internal/log"
	"github.com/teslashibe/go-driveguard/pkg/camera"
	"github.com/teslashibe/go-driveguard/pkg/clock"
	"github.com/teslashibe/go-driveguard/pkg/coach"
	"github.com/teslashibe/go-driveguard/pkg/intervention"
	"github.com/teslashibe/go-driveguard/pkg/landmark"
	"github.com/teslashibe/go-driveguard/pkg/monitor"
	"github.com/teslashibe/go-driveguard/pkg/notify"
	"github.com/teslashibe/go-driveguard/pkg/profile"
	"github.com/teslashibe/go-driveguard/pkg/web"
)

func main() {
	cfg := config.Load()

	driverID := flag.String("driver", cfg.DriverID, "Driver id for the monitoring profile")
	port := flag.String("port", cfg.HTTPPort, "Dashboard HTTP port")
	device := flag.Int("camera", cfg.CameraDevice, "Capture device id")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	store, err := profile.NewStore(cfg.ProfileDir)
	if err != nil {
		stdlog.Fatalf("profile store: %v", err)
	}

	cam, err := camera.OpenWebcam(*device, cfg.FrameWidth, cfg.FrameHeight)
	if err != nil {
		stdlog.Fatalf("camera: %v", err)
	}
	defer cam.Close()

	faces, err := newLandmarkProvider(cfg)
	if err != nil {
		stdlog.Fatalf("landmark provider: %v", err)
	}
	defer faces.Close()

	advisor := newAdvisor(cfg)
	speaker := newSpeaker(cfg)

	clk := clock.New()
	engine := intervention.NewEngine(store, *driverID, clk)

	dashboard := web.NewServer(*port, *driverID, store)
	dashboard.StartAsync()
	defer dashboard.Shutdown()

	session := monitor.New(monitor.DefaultConfig(*driverID),
		clk, cam, faces, advisor, speaker, engine, dashboard)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := session.Run(ctx); err != nil && err != context.Canceled {
		stdlog.Fatalf("session: %v", err)
	}
}

// newLandmarkProvider picks the streaming client when a websocket URL is
// configured, plain HTTP otherwise.
func newLandmarkProvider(cfg *config.Config) (landmark.Provider, error) {
	if cfg.LandmarkWSURL != "" {
		return landmark.NewStream(cfg.LandmarkWSURL, cfg.LandmarkAPIKey)
	}
	return landmark.NewHTTP(cfg.LandmarkURL, cfg.LandmarkAPIKey), nil
}

// newAdvisor returns the Gemini coach, or a no-op advisor when no key is
// configured.
func newAdvisor(cfg *config.Config) coach.Advisor {
	if cfg.GeminiAPIKey == "" {
		log.Warn("no GOOGLE_API_KEY set, coaching disabled")
		return coach.AdvisorFunc(func(ctx context.Context, summary string) (string, error) {
			return "", nil
		})
	}
	return coach.NewGemini(cfg.GeminiAPIKey)
}

// newSpeaker returns the audio deliverer, or nil to route all interventions
// to the dashboard alert stream.
func newSpeaker(cfg *config.Config) notify.Speaker {
	if cfg.TTSAPIKey == "" || cfg.TTSVoice == "" {
		log.Warn("no ELEVENLABS_API_KEY/VOICE_ID set, audio delivery disabled")
		return nil
	}
	return notify.NewElevenLabs(cfg.TTSAPIKey, cfg.TTSVoice, notify.CommandPlayer("mpg123", "-q", "-"))
}
