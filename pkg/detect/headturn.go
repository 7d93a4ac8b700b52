package detect

import (
	"math"
	"time"

	"github.com/teslashibe/go-driveguard/pkg/clock"
	"github.com/teslashibe/go-driveguard/pkg/landmark"
)

// Head-turn thresholds.
const (
	// headTurnYawDegrees is the absolute yaw beyond which the head counts
	// as turned away.
	headTurnYawDegrees = 20.0

	// headTurnRefire is the interval at which a continuous turn re-emits.
	headTurnRefire = 5 * time.Second
)

// HeadTurnDetector flags sustained looking-away. A continuous turn re-fires
// on a fixed interval so the escalation keeps pace with the distraction.
type HeadTurnDetector struct {
	clk clock.Clock
}

// NewHeadTurnDetector creates a head-turn detector using the given clock.
func NewHeadTurnDetector(clk clock.Clock) *HeadTurnDetector {
	return &HeadTurnDetector{clk: clk}
}

// Process consumes one frame's head yaw.
func (d *HeadTurnDetector) Process(m *Metrics, face *landmark.Face) Result {
	if face == nil {
		return Result{}
	}

	now := d.clk.Now()

	if math.Abs(face.Yaw) > headTurnYawDegrees {
		if !m.HeadTurned {
			m.HeadTurned = true
			m.TurnStart = now
			m.LastTurnFire = now
			return Result{}
		}

		elapsed := now.Sub(m.LastTurnFire)
		if elapsed >= headTurnRefire {
			m.LastTurnFire = now
			return Result{Event: &Event{
				Type:       EventHeadTurn,
				Severity:   minf(elapsed.Seconds()/5, 1),
				Message:    "Driver looking away from the road",
				At:         now,
				Actionable: true,
			}}
		}
		return Result{}
	}

	if !m.HeadTurned {
		return Result{}
	}

	m.HeadTurned = false
	return Result{Recovery: &Recovery{Type: EventHeadTurn, At: now}}
}
