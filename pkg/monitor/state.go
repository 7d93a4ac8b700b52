// Package monitor runs a driver monitoring session: the capture, detection,
// and advisory loops composed over the detectors, event log, and
// intervention engine.
package monitor

import "time"

// maxRecentEvents caps the published recent-events list.
const maxRecentEvents = 10

// State is the published monitoring snapshot, rebuilt every capture cycle
// from the session metrics. It is never the source of truth.
type State struct {
	DriverID string `json:"driver_id"`

	BlinkCount  int `json:"blink_count"`
	SleepyCount int `json:"sleepy_count"`
	YawnCount   int `json:"yawn_count"`

	Calibrated         bool   `json:"calibrated"`
	CalibrationMessage string `json:"calibration_message"`

	FaceVisible bool `json:"face_visible"`
	Sleepy      bool `json:"sleepy"`
	HeadTurned  bool `json:"head_turned"`

	LastAdvice string `json:"last_advice"`

	// RecentEvents is newest-first, capped at 10.
	RecentEvents []string `json:"recent_events"`

	// HasFrame signals that frame bytes are flowing on the camera stream.
	HasFrame bool `json:"has_frame"`

	Timestamp time.Time `json:"timestamp"`
}

// Alert kinds published on the dashboard alert stream.
const (
	AlertFaceLost     = "face-lost"
	AlertFaceRegained = "face-regained"
	AlertSleepy       = "sleepy-detected"
	AlertYawn         = "yawn-detected"
	AlertHeadTurn     = "head-turn-detected"
	AlertCoaching     = "coaching-received"
	AlertIntervention = "intervention"
	AlertFallback     = "delivery-fallback"
)

// Alert is one discrete presentation notification.
type Alert struct {
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	Fallback bool      `json:"fallback,omitempty"`
	At       time.Time `json:"at"`
}

// Sink receives everything the session publishes. The dashboard implements
// it; tests use a recording fake.
type Sink interface {
	PublishState(state State)
	PublishAlert(alert Alert)
	PublishFrame(jpeg []byte)
}
