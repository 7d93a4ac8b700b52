package detect

import (
	"time"

	"github.com/teslashibe/go-driveguard/pkg/clock"
	"github.com/teslashibe/go-driveguard/pkg/landmark"
)

// Eye-closure thresholds.
const (
	// earClosedFraction of the baseline below which the eyes count as closed.
	earClosedFraction = 0.7

	// SleepyAfter is how long the eyes must stay closed before a closure
	// counts as a sleepy episode rather than a blink.
	SleepyAfter = 1500 * time.Millisecond

	// sleepyDebounce is the minimum gap between sleepy emissions.
	sleepyDebounce = 3 * time.Second
)

// EyeDetector classifies blinks and sleepy episodes from the eye-aspect
// ratio. It owns calibration of the baseline EAR via Metrics.ObserveEAR.
type EyeDetector struct {
	clk clock.Clock
}

// NewEyeDetector creates an eye-closure detector using the given clock.
func NewEyeDetector(clk clock.Clock) *EyeDetector {
	return &EyeDetector{clk: clk}
}

// eyeRatio is vertical opening over horizontal width for one eye.
// Returns (0, false) when the eye geometry is degenerate.
func eyeRatio(e landmark.Eye) (float64, bool) {
	width := landmark.Distance(*e.Inner, *e.Outer)
	if width <= 0 {
		return 0, false
	}
	return landmark.Distance(*e.Top, *e.Bottom) / width, true
}

// Process consumes one frame's eye landmarks. Missing or degenerate landmark
// data short-circuits with no state mutated.
func (d *EyeDetector) Process(m *Metrics, face *landmark.Face) Result {
	if face == nil || !face.LeftEye.Complete() || !face.RightEye.Complete() {
		return Result{}
	}

	left, ok := eyeRatio(face.LeftEye)
	if !ok {
		return Result{}
	}
	right, ok := eyeRatio(face.RightEye)
	if !ok {
		return Result{}
	}

	working := m.ObserveEAR((left + right) / 2)
	if !m.Calibrated {
		// No classification until the baseline exists.
		return Result{}
	}

	now := d.clk.Now()
	closed := working < m.BaselineEAR*earClosedFraction

	if closed {
		if !m.EyesClosed {
			m.EyesClosed = true
			m.ClosureStart = now
			return Result{}
		}

		elapsed := now.Sub(m.ClosureStart)
		if elapsed >= SleepyAfter && now.Sub(m.LastSleepyAt) >= sleepyDebounce {
			m.SleepyCount++
			m.LastSleepyAt = now
			return Result{Event: &Event{
				Type:       EventSleepy,
				Severity:   sleepySeverity(elapsed, m.SleepyCount),
				Message:    "Prolonged eye closure detected",
				At:         now,
				Actionable: true,
			}}
		}
		return Result{}
	}

	if !m.EyesClosed {
		return Result{}
	}

	m.EyesClosed = false
	duration := now.Sub(m.ClosureStart)
	if duration < SleepyAfter {
		m.BlinkCount++
		return Result{}
	}

	// Eyes reopened after a sleepy-length closure: the driver recovered.
	return Result{Recovery: &Recovery{Type: EventSleepy, At: now}}
}

// sleepySeverity combines closure duration and episode count, each with its
// own cap, then clamps the sum into the 0-1 severity range.
func sleepySeverity(closed time.Duration, sleepyCount int) float64 {
	sev := minf(closed.Seconds()/5, 1) + minf(float64(sleepyCount)/10, 1)
	return minf(sev, 1)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
