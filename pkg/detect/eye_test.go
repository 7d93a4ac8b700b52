package detect

import (
	"math"
	"testing"
	"time"

	"github.com/teslashibe/go-driveguard/pkg/clock"
	"github.com/teslashibe/go-driveguard/pkg/landmark"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func pt(x, y float64) *landmark.Point {
	return &landmark.Point{X: x, Y: y}
}

// testFace builds a face whose eye-aspect ratio, lip-gap ratio, and head yaw
// are exactly the given values. Eye width is fixed at 10px, face height at
// 100px.
func testFace(ear, mouthRatio, yaw float64) *landmark.Face {
	eye := func() landmark.Eye {
		return landmark.Eye{
			Inner:  pt(0, 50),
			Outer:  pt(10, 50),
			Top:    pt(5, 50-ear*5),
			Bottom: pt(5, 50+ear*5),
		}
	}
	return &landmark.Face{
		Box:        landmark.Box{Width: 100, Height: 100},
		LeftEye:    eye(),
		RightEye:   eye(),
		Mouth:      landmark.Mouth{Top: pt(50, 60), Bottom: pt(50, 60+mouthRatio*100)},
		Yaw:        yaw,
		Confidence: 0.95,
	}
}

// calibrate feeds enough open-eye frames to latch the baseline at 0.30.
func calibrate(t *testing.T, d *EyeDetector, m *Metrics) {
	t.Helper()
	for i := 0; i < EARWindowSize; i++ {
		d.Process(m, testFace(0.30, 0, 0))
	}
	if !m.Calibrated {
		t.Fatalf("expected calibration after %d frames", EARWindowSize)
	}
	if !floatEquals(m.BaselineEAR, 0.30) {
		t.Fatalf("baseline after calibration: got %v, want 0.30", m.BaselineEAR)
	}
}

// closeEyes feeds very low EAR frames until the closed transition happens.
func closeEyes(t *testing.T, d *EyeDetector, m *Metrics) {
	t.Helper()
	for i := 0; i < EARWindowSize; i++ {
		d.Process(m, testFace(0.05, 0, 0))
		if m.EyesClosed {
			return
		}
	}
	t.Fatal("eyes never registered as closed")
}

func TestEyeDetector_CalibrationLatches(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	d := NewEyeDetector(clk)
	m := NewMetrics()

	for i := 0; i < EARWindowSize-1; i++ {
		res := d.Process(m, testFace(0.30, 0, 0))
		if res.Event != nil || res.Recovery != nil {
			t.Errorf("frame %d before calibration: got non-empty result", i)
		}
		if m.Calibrated {
			t.Fatalf("calibrated after %d frames, want %d", i+1, EARWindowSize)
		}
	}

	d.Process(m, testFace(0.30, 0, 0))
	if !m.Calibrated {
		t.Fatal("expected calibration on the fifth frame")
	}
	if !floatEquals(m.BaselineEAR, 0.30) {
		t.Errorf("baseline: got %v, want 0.30", m.BaselineEAR)
	}
}

func TestEyeDetector_IncompleteLandmarksIgnored(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	d := NewEyeDetector(clk)
	m := NewMetrics()

	face := testFace(0.30, 0, 0)
	face.LeftEye.Top = nil

	res := d.Process(m, face)
	if res.Event != nil || res.Recovery != nil {
		t.Error("incomplete landmarks should produce an empty result")
	}
	if m.Calibrated {
		t.Error("incomplete landmarks should not feed calibration")
	}
}

func TestEyeDetector_BlinkDoesNotEmit(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	d := NewEyeDetector(clk)
	m := NewMetrics()
	calibrate(t, d, m)

	closeEyes(t, d, m)

	// Reopen well inside the sleepy threshold.
	clk.Advance(500 * time.Millisecond)
	for i := 0; i < 10 && m.EyesClosed; i++ {
		res := d.Process(m, testFace(0.30, 0, 0))
		if res.Event != nil {
			t.Errorf("blink produced an event: %+v", res.Event)
		}
		if res.Recovery != nil {
			t.Errorf("blink produced a recovery: %+v", res.Recovery)
		}
		clk.Advance(10 * time.Millisecond)
	}

	if m.EyesClosed {
		t.Fatal("eyes never reopened")
	}
	if m.BlinkCount != 1 {
		t.Errorf("BlinkCount: got %d, want 1", m.BlinkCount)
	}
	if m.SleepyCount != 0 {
		t.Errorf("SleepyCount: got %d, want 0", m.SleepyCount)
	}
}

func TestEyeDetector_SleepyEmissionAndDebounce(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	d := NewEyeDetector(clk)
	m := NewMetrics()
	calibrate(t, d, m)

	closeEyes(t, d, m)

	clk.Advance(SleepyAfter)
	res := d.Process(m, testFace(0.05, 0, 0))
	if res.Event == nil {
		t.Fatal("expected a sleepy event after 1.5s of closure")
	}
	if res.Event.Type != EventSleepy {
		t.Errorf("event type: got %q, want %q", res.Event.Type, EventSleepy)
	}
	if !res.Event.Actionable {
		t.Error("sleepy events should be actionable")
	}
	// 1.5s closure and one lifetime episode: 0.3 + 0.1
	if !floatEquals(res.Event.Severity, 0.4) {
		t.Errorf("severity: got %v, want 0.4", res.Event.Severity)
	}
	if m.SleepyCount != 1 {
		t.Errorf("SleepyCount: got %d, want 1", m.SleepyCount)
	}

	// Still closed one second later: suppressed by the debounce.
	clk.Advance(time.Second)
	res = d.Process(m, testFace(0.05, 0, 0))
	if res.Event != nil {
		t.Errorf("event inside the debounce window: %+v", res.Event)
	}

	// Three seconds after the first emission it fires again.
	clk.Advance(2 * time.Second)
	res = d.Process(m, testFace(0.05, 0, 0))
	if res.Event == nil {
		t.Fatal("expected a second sleepy event after the debounce")
	}
	if m.SleepyCount != 2 {
		t.Errorf("SleepyCount: got %d, want 2", m.SleepyCount)
	}
	// 4.5s closure caps the duration term; sum clamps to 1.
	if !floatEquals(res.Event.Severity, 1.0) {
		t.Errorf("severity: got %v, want 1.0", res.Event.Severity)
	}
}

func TestEyeDetector_RecoveryAfterSleepyClosure(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	d := NewEyeDetector(clk)
	m := NewMetrics()
	calibrate(t, d, m)

	closeEyes(t, d, m)
	clk.Advance(2 * time.Second)
	if res := d.Process(m, testFace(0.05, 0, 0)); res.Event == nil {
		t.Fatal("expected a sleepy event")
	}

	var recovered bool
	for i := 0; i < 10 && !recovered; i++ {
		res := d.Process(m, testFace(0.30, 0, 0))
		if res.Recovery != nil {
			if res.Recovery.Type != EventSleepy {
				t.Errorf("recovery type: got %q, want %q", res.Recovery.Type, EventSleepy)
			}
			recovered = true
		}
	}
	if !recovered {
		t.Fatal("expected a recovery when the eyes reopened")
	}
	if m.BlinkCount != 0 {
		t.Errorf("BlinkCount after sleepy recovery: got %d, want 0", m.BlinkCount)
	}
}
