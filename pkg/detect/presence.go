package detect

import (
	"time"

	"github.com/teslashibe/go-driveguard/pkg/clock"
)

// Face-presence thresholds.
const (
	// noFaceAfter is how long the face must be continuously absent before
	// the alert fires.
	noFaceAfter = 15 * time.Second

	// noFaceCooldown gates re-emission. The cooldown stamp survives brief
	// reappearances so flicker cannot re-alert inside the window.
	noFaceCooldown = 10 * time.Second
)

// PresenceTracker watches the per-cycle "any face detected" flag. It is
// driven by the detection loop, the only place that knows authoritatively
// whether the provider saw a face this cycle.
type PresenceTracker struct {
	clk clock.Clock
}

// NewPresenceTracker creates a face-presence tracker using the given clock.
func NewPresenceTracker(clk clock.Clock) *PresenceTracker {
	return &PresenceTracker{clk: clk}
}

// Observe consumes one detection cycle's presence flag.
func (t *PresenceTracker) Observe(m *Metrics, faceVisible bool) Result {
	now := t.clk.Now()

	if faceVisible {
		alerted := m.NoFaceAlerted
		m.FaceMissing = false
		m.MissingSince = time.Time{}
		m.NoFaceAlerted = false
		// LastNoFaceAlert is deliberately kept: cooldown persists across
		// brief reappearances.
		if alerted {
			return Result{Recovery: &Recovery{Type: EventNoFace, At: now}}
		}
		return Result{}
	}

	if !m.FaceMissing {
		m.FaceMissing = true
		m.MissingSince = now
		return Result{}
	}

	duration := now.Sub(m.MissingSince)
	if duration >= noFaceAfter && now.Sub(m.LastNoFaceAlert) >= noFaceCooldown {
		m.NoFaceAlerted = true
		m.LastNoFaceAlert = now
		return Result{Event: &Event{
			Type:       EventNoFace,
			Severity:   minf(duration.Seconds()/(noFaceAfter.Seconds()*1.5), 1),
			Message:    "Driver face not visible",
			At:         now,
			Actionable: true,
		}}
	}
	return Result{}
}
