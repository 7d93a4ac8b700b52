package monitor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/teslashibe/go-driveguard/internal/log"
	"github.com/teslashibe/go-driveguard/pkg/camera"
	"github.com/teslashibe/go-driveguard/pkg/clock"
	"github.com/teslashibe/go-driveguard/pkg/coach"
	"github.com/teslashibe/go-driveguard/pkg/detect"
	"github.com/teslashibe/go-driveguard/pkg/eventlog"
	"github.com/teslashibe/go-driveguard/pkg/intervention"
	"github.com/teslashibe/go-driveguard/pkg/landmark"
	"github.com/teslashibe/go-driveguard/pkg/notify"
)

// Config holds the session loop periods.
type Config struct {
	DriverID string

	CaptureInterval  time.Duration // ~30 fps
	DetectInterval   time.Duration // external landmark call gate
	AdvisoryInterval time.Duration // coaching period
}

// DefaultConfig returns the production loop periods.
func DefaultConfig(driverID string) Config {
	return Config{
		DriverID:         driverID,
		CaptureInterval:  33 * time.Millisecond,
		DetectInterval:   time.Second,
		AdvisoryInterval: time.Minute,
	}
}

// Session composes the detectors, event log, intervention engine, and
// external collaborators into the three monitoring loops.
type Session struct {
	cfg     Config
	clk     clock.Clock
	video   camera.VideoSource
	faces   landmark.Provider
	advisor coach.Advisor
	speaker notify.Speaker
	engine  *intervention.Engine
	sink    Sink

	events *eventlog.Tracker

	// metricsMu guards metrics plus the derived presentation fields below.
	metricsMu     sync.Mutex
	metrics       *detect.Metrics
	faceVisible   bool
	presenceKnown bool // false until the first detection cycle completes
	lastAdvice    string
	recentEvents  []string

	eye      *detect.EyeDetector
	yawn     *detect.YawnDetector
	head     *detect.HeadTurnDetector
	presence *detect.PresenceTracker

	// frameMu guards the most recent captured frame.
	frameMu     sync.Mutex
	latestFrame []byte

	// resultMu guards the detection-loop output awaiting the capture loop.
	// The capture loop takes the frame and clears the slot; most recent
	// write wins.
	resultMu sync.Mutex
	pending  *landmark.Frame
}

// New creates a monitoring session. speaker may be nil (dashboard-only
// delivery); sink must not be.
func New(cfg Config, clk clock.Clock, video camera.VideoSource, faces landmark.Provider,
	advisor coach.Advisor, speaker notify.Speaker, engine *intervention.Engine, sink Sink) *Session {
	return &Session{
		cfg:      cfg,
		clk:      clk,
		video:    video,
		faces:    faces,
		advisor:  advisor,
		speaker:  speaker,
		engine:   engine,
		sink:     sink,
		events:   eventlog.New(),
		metrics:  detect.NewMetrics(),
		eye:      detect.NewEyeDetector(clk),
		yawn:     detect.NewYawnDetector(clk),
		head:     detect.NewHeadTurnDetector(clk),
		presence: detect.NewPresenceTracker(clk),
	}
}

// Run starts the three loops and blocks until the context is cancelled.
func (s *Session) Run(ctx context.Context) error {
	log.Info("monitoring session started",
		"driver", s.cfg.DriverID,
		"session", s.engine.SessionID(),
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.captureLoop(ctx) }()
	go func() { defer wg.Done(); s.detectionLoop(ctx) }()
	go func() { defer wg.Done(); s.advisoryLoop(ctx) }()
	wg.Wait()

	log.Info("monitoring session stopped", "driver", s.cfg.DriverID)
	return ctx.Err()
}

// captureLoop pulls frames at ~30fps, feeds the latest landmark result into
// the detectors, and republishes the monitoring state. It never waits on the
// landmark provider.
func (s *Session) captureLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CaptureInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.captureCycle()
		}
	}
}

// captureCycle is one iteration of the capture loop; any failure inside it
// is isolated to this iteration.
func (s *Session) captureCycle() {
	frame, err := s.video.CaptureJPEG()
	if err != nil {
		log.Debug("frame capture failed", "error", err)
	} else {
		s.frameMu.Lock()
		s.latestFrame = frame
		s.frameMu.Unlock()
		s.sink.PublishFrame(frame)
	}

	// Swap the detection result out of the shared buffer; each landmark
	// frame feeds the detectors exactly once.
	s.resultMu.Lock()
	lf := s.pending
	s.pending = nil
	s.resultMu.Unlock()

	if lf != nil && lf.Face != nil {
		s.metricsMu.Lock()
		results := []detect.Result{
			s.eye.Process(s.metrics, lf.Face),
			s.yawn.Process(s.metrics, lf.Face),
			s.head.Process(s.metrics, lf.Face),
		}
		s.metricsMu.Unlock()
		for _, r := range results {
			s.handleResult(r)
		}
	}

	s.sink.PublishState(s.Snapshot())
}

// detectionLoop issues at most one external landmark request per interval
// and deposits the resolved result into the shared buffer. On zero faces it
// drives the presence tracker, since only this loop knows "no face this
// cycle" authoritatively.
func (s *Session) detectionLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.DetectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.detectionCycle(ctx)
		}
	}
}

func (s *Session) detectionCycle(ctx context.Context) {
	s.frameMu.Lock()
	frame := s.latestFrame
	s.frameMu.Unlock()
	if frame == nil {
		return
	}

	faces, err := s.faces.Detect(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return // cancelled: discard the outcome
		}
		log.Warn("landmark detection failed", "error", err)
		return
	}

	face := landmark.SelectNearest(faces)
	visible := face != nil

	s.metricsMu.Lock()
	wasVisible := s.faceVisible
	known := s.presenceKnown
	s.faceVisible = visible
	s.presenceKnown = true
	res := s.presence.Observe(s.metrics, visible)
	s.metricsMu.Unlock()

	// The first cycle only establishes the state; alerting on it would fake
	// a transition that never happened.
	if known && visible != wasVisible {
		kind := AlertFaceRegained
		msg := "Driver face visible again"
		if !visible {
			kind = AlertFaceLost
			msg = "Driver face lost"
		}
		s.sink.PublishAlert(Alert{Kind: kind, Message: msg, At: s.clk.Now()})
	}

	s.handleResult(res)

	s.resultMu.Lock()
	s.pending = &landmark.Frame{Face: face, FaceVisible: visible}
	s.resultMu.Unlock()
}

// advisoryLoop periodically summarizes the last minute of events and turns
// the text provider's answer into a synthetic coaching event.
func (s *Session) advisoryLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.AdvisoryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.advisoryCycle(ctx)
		}
	}
}

func (s *Session) advisoryCycle(ctx context.Context) {
	summary := s.events.Summary(s.clk.Now())
	if summary == "" {
		return
	}

	advice, err := s.advisor.Advise(ctx, summary)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn("coaching advice failed", "error", err)
		advice = coach.Fallback
	}
	if advice == "" {
		return
	}

	s.handleResult(detect.Result{Event: &detect.Event{
		Type:       detect.EventCoaching,
		Severity:   0.6,
		Message:    advice,
		At:         s.clk.Now(),
		Actionable: true,
	}})
}

// handleResult routes one detector result: events to the event log, alert
// stream, and intervention engine; recoveries to the scorer.
func (s *Session) handleResult(res detect.Result) {
	if res.Recovery != nil {
		s.engine.Resolve(string(res.Recovery.Type), true)
	}

	ev := res.Event
	if ev == nil {
		return
	}

	if ev.Type != detect.EventCoaching {
		s.events.Add(ev.Type, ev.At)
	}
	s.rememberEvent(ev)
	s.sink.PublishAlert(Alert{Kind: alertKind(ev.Type), Message: ev.Message, At: ev.At})

	if !ev.Actionable {
		return
	}

	preauthored := ""
	if ev.Type == detect.EventCoaching {
		preauthored = ev.Message
	}

	def, message, err := s.engine.Select(string(ev.Type), ev.Severity, preauthored)
	if err != nil {
		log.Error("intervention selection failed", "event", ev.Type, "error", err)
		return
	}
	// Delivery can take seconds (TTS synthesis plus playback); it must never
	// stall the capture loop that routed the event here.
	go s.deliver(def, message)
}

// deliver performs the intervention's delivery side effect on its own
// goroutine. Audio failures fall back to the dashboard alert stream carrying
// the same message.
func (s *Session) deliver(def intervention.Definition, message string) {
	if strings.HasPrefix(def.Type, "Audio") && s.speaker != nil {
		if err := s.speaker.Speak(context.Background(), message); err != nil {
			log.Warn("audio delivery failed, falling back", "intervention", def.Type, "error", err)
			s.sink.PublishAlert(Alert{
				Kind:     AlertFallback,
				Message:  message,
				Fallback: true,
				At:       s.clk.Now(),
			})
		}
		return
	}
	s.sink.PublishAlert(Alert{Kind: AlertIntervention, Message: message, At: s.clk.Now()})
}

// rememberEvent prepends to the capped recent-events list and retains
// coaching text for the snapshot.
func (s *Session) rememberEvent(ev *detect.Event) {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()

	s.recentEvents = append([]string{ev.Message}, s.recentEvents...)
	if len(s.recentEvents) > maxRecentEvents {
		s.recentEvents = s.recentEvents[:maxRecentEvents]
	}
	if ev.Type == detect.EventCoaching {
		s.lastAdvice = ev.Message
	}
}

// Snapshot rebuilds the published state from the session metrics.
func (s *Session) Snapshot() State {
	now := s.clk.Now()

	s.frameMu.Lock()
	hasFrame := s.latestFrame != nil
	s.frameMu.Unlock()

	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()

	m := s.metrics
	calMsg := "calibrating baseline, keep eyes open"
	if m.Calibrated {
		calMsg = "calibrated"
	}

	events := make([]string, len(s.recentEvents))
	copy(events, s.recentEvents)

	return State{
		DriverID:           s.cfg.DriverID,
		BlinkCount:         m.BlinkCount,
		SleepyCount:        m.SleepyCount,
		YawnCount:          m.YawnCount,
		Calibrated:         m.Calibrated,
		CalibrationMessage: calMsg,
		FaceVisible:        s.faceVisible,
		Sleepy:             m.EyesClosed && now.Sub(m.ClosureStart) >= detect.SleepyAfter,
		HeadTurned:         m.HeadTurned,
		LastAdvice:         s.lastAdvice,
		RecentEvents:       events,
		HasFrame:           hasFrame,
		Timestamp:          now,
	}
}

func alertKind(t detect.EventType) string {
	switch t {
	case detect.EventSleepy:
		return AlertSleepy
	case detect.EventYawn:
		return AlertYawn
	case detect.EventHeadTurn:
		return AlertHeadTurn
	case detect.EventNoFace:
		return AlertFaceLost
	case detect.EventCoaching:
		return AlertCoaching
	}
	return string(t)
}
