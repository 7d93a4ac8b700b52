package detect

import (
	"time"

	"github.com/teslashibe/go-driveguard/pkg/clock"
	"github.com/teslashibe/go-driveguard/pkg/landmark"
)

// Yawn thresholds.
const (
	// yawnOpenRatio is the lip gap / face height above which the mouth
	// counts as open.
	yawnOpenRatio = 0.11

	// yawnHold is how long the mouth must stay open to count as a yawn.
	yawnHold = 1500 * time.Millisecond

	// yawnForwardCount is the cumulative yawn count at which yawn events
	// start reaching the intervention engine.
	yawnForwardCount = 3
)

// YawnDetector flags sustained mouth opening as yawns. A single yawn is
// normal; the event only becomes actionable once yawns accumulate.
type YawnDetector struct {
	clk clock.Clock
}

// NewYawnDetector creates a yawn detector using the given clock.
func NewYawnDetector(clk clock.Clock) *YawnDetector {
	return &YawnDetector{clk: clk}
}

// Process consumes one frame's mouth landmarks. Missing landmark data or a
// degenerate face box short-circuits with no state mutated.
func (d *YawnDetector) Process(m *Metrics, face *landmark.Face) Result {
	if face == nil || !face.Mouth.Complete() || face.Box.Height <= 0 {
		return Result{}
	}

	ratio := (face.Mouth.Bottom.Y - face.Mouth.Top.Y) / face.Box.Height
	now := d.clk.Now()

	if ratio > yawnOpenRatio {
		if !m.MouthOpen {
			m.MouthOpen = true
			m.MouthOpenStart = now
			m.YawnFlagged = false
			return Result{}
		}

		if !m.YawnFlagged && now.Sub(m.MouthOpenStart) >= yawnHold {
			m.YawnFlagged = true
			m.YawnCount++
			return Result{Event: &Event{
				Type:       EventYawn,
				Severity:   minf(0.4+float64(m.YawnCount)*0.1, 0.9),
				Message:    "Yawn detected",
				At:         now,
				Actionable: m.YawnCount >= yawnForwardCount,
			}}
		}
		return Result{}
	}

	if !m.MouthOpen {
		return Result{}
	}

	m.MouthOpen = false
	if m.YawnFlagged {
		m.YawnFlagged = false
		return Result{Recovery: &Recovery{Type: EventYawn, At: now}}
	}
	return Result{}
}
