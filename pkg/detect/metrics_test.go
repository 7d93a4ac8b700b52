package detect

import (
	"math"
	"testing"
)

func TestMetrics_ObserveEARCalibration(t *testing.T) {
	m := NewMetrics()

	samples := []float64{0.28, 0.30, 0.32, 0.30, 0.30}
	for i, s := range samples {
		m.ObserveEAR(s)
		wantCalibrated := i == len(samples)-1
		if m.Calibrated != wantCalibrated {
			t.Fatalf("after sample %d: Calibrated=%v, want %v", i+1, m.Calibrated, wantCalibrated)
		}
	}

	// Baseline is the mean of the first full window.
	if math.Abs(m.BaselineEAR-0.30) > 1e-9 {
		t.Errorf("baseline: got %v, want 0.30", m.BaselineEAR)
	}
}

func TestMetrics_BaselineDriftsAfterCalibration(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < EARWindowSize; i++ {
		m.ObserveEAR(0.30)
	}
	base := m.BaselineEAR

	working := m.ObserveEAR(0.20)

	// Window is four 0.30 samples plus the new one.
	wantWorking := (0.30*4 + 0.20) / 5
	if math.Abs(working-wantWorking) > 1e-9 {
		t.Errorf("working EAR: got %v, want %v", working, wantWorking)
	}

	want := base*0.99 + wantWorking*0.01
	if math.Abs(m.BaselineEAR-want) > 1e-9 {
		t.Errorf("baseline after drift: got %v, want %v", m.BaselineEAR, want)
	}
	if !m.Calibrated {
		t.Error("calibration must never unlatch")
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < EARWindowSize; i++ {
		m.ObserveEAR(0.30)
	}
	m.BlinkCount = 3
	m.SleepyCount = 2

	m.Reset()

	if m.Calibrated || m.BaselineEAR != 0 {
		t.Error("Reset should discard calibration")
	}
	if m.BlinkCount != 0 || m.SleepyCount != 0 {
		t.Error("Reset should zero the counters")
	}
	if len(m.earWindow) != 0 {
		t.Errorf("window length after Reset: got %d, want 0", len(m.earWindow))
	}
}
