package detect

import (
	"testing"
	"time"

	"github.com/teslashibe/go-driveguard/pkg/clock"
)

func TestHeadTurnDetector_RefireInterval(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	d := NewHeadTurnDetector(clk)
	m := NewMetrics()

	if res := d.Process(m, testFace(0.30, 0, 30)); res.Event != nil {
		t.Error("turn onset should not emit")
	}
	if !m.HeadTurned {
		t.Fatal("expected HeadTurned after a 30 degree yaw")
	}

	clk.Advance(5 * time.Second)
	res := d.Process(m, testFace(0.30, 0, 30))
	if res.Event == nil {
		t.Fatal("expected an event at 5s of continuous turn")
	}
	if res.Event.Type != EventHeadTurn {
		t.Errorf("event type: got %q, want %q", res.Event.Type, EventHeadTurn)
	}
	if !floatEquals(res.Event.Severity, 1.0) {
		t.Errorf("severity: got %v, want 1.0", res.Event.Severity)
	}
	if !res.Event.Actionable {
		t.Error("head-turn events should be actionable")
	}

	// The timer reset on emission: 3s later nothing fires.
	clk.Advance(3 * time.Second)
	if res := d.Process(m, testFace(0.30, 0, 30)); res.Event != nil {
		t.Error("re-fired before the interval elapsed")
	}

	// Two more seconds completes the next interval.
	clk.Advance(2 * time.Second)
	res = d.Process(m, testFace(0.30, 0, 30))
	if res.Event == nil {
		t.Fatal("expected a re-fire at the next 5s mark")
	}
	if !floatEquals(res.Event.Severity, 1.0) {
		t.Errorf("re-fire severity: got %v, want 1.0", res.Event.Severity)
	}
}

func TestHeadTurnDetector_RecoveryOnCentering(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	d := NewHeadTurnDetector(clk)
	m := NewMetrics()

	d.Process(m, testFace(0.30, 0, -25))
	if !m.HeadTurned {
		t.Fatal("negative yaw past the threshold should count as turned")
	}

	clk.Advance(time.Second)
	res := d.Process(m, testFace(0.30, 0, 5))
	if res.Recovery == nil {
		t.Fatal("expected a recovery when the head centered")
	}
	if res.Recovery.Type != EventHeadTurn {
		t.Errorf("recovery type: got %q, want %q", res.Recovery.Type, EventHeadTurn)
	}
	if m.HeadTurned {
		t.Error("HeadTurned should clear on centering")
	}
}

func TestHeadTurnDetector_UnderThresholdIgnored(t *testing.T) {
	clk := clock.NewFake(time.Unix(1000, 0))
	d := NewHeadTurnDetector(clk)
	m := NewMetrics()

	res := d.Process(m, testFace(0.30, 0, 15))
	if res.Event != nil || res.Recovery != nil || m.HeadTurned {
		t.Error("15 degrees of yaw should be ignored")
	}
}
