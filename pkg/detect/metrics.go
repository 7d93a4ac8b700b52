package detect

import "time"

// EARWindowSize is the capacity of the EAR smoothing buffer. The first full
// window also doubles as the calibration sample set.
const EARWindowSize = 5

// baselineAlpha is the EMA weight for adapting the baseline EAR after
// calibration.
const baselineAlpha = 0.01

// Metrics is the per-session numeric state shared by all detectors.
// It is mutated only by detector Process calls, which the session serializes
// under a single lock.
type Metrics struct {
	// Eye state
	earWindow   []float64
	BaselineEAR float64
	Calibrated  bool

	EyesClosed   bool
	ClosureStart time.Time
	LastSleepyAt time.Time

	// Mouth state
	MouthOpen      bool
	MouthOpenStart time.Time
	YawnFlagged    bool

	// Head state
	HeadTurned   bool
	TurnStart    time.Time
	LastTurnFire time.Time

	// Face presence state
	FaceMissing     bool
	MissingSince    time.Time
	NoFaceAlerted   bool
	LastNoFaceAlert time.Time

	// Counters
	BlinkCount  int
	SleepyCount int
	YawnCount   int
}

// NewMetrics creates zeroed session metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		earWindow: make([]float64, 0, EARWindowSize),
	}
}

// Reset returns all state to the start-of-session zero values.
func (m *Metrics) Reset() {
	*m = Metrics{earWindow: m.earWindow[:0]}
}

// ObserveEAR pushes one raw EAR sample into the smoothing buffer and returns
// the working (buffer-mean) EAR. The first EARWindowSize samples calibrate
// the baseline; once calibrated stays true it never flips back for the
// session. After calibration the baseline drifts toward the working EAR.
func (m *Metrics) ObserveEAR(sample float64) float64 {
	if len(m.earWindow) == EARWindowSize {
		copy(m.earWindow, m.earWindow[1:])
		m.earWindow[EARWindowSize-1] = sample
	} else {
		m.earWindow = append(m.earWindow, sample)
	}

	working := mean(m.earWindow)

	if !m.Calibrated {
		if len(m.earWindow) == EARWindowSize {
			m.BaselineEAR = working
			m.Calibrated = true
		}
		return working
	}

	m.BaselineEAR = m.BaselineEAR*(1-baselineAlpha) + working*baselineAlpha
	return working
}

// SampleCount returns how many EAR samples the smoothing buffer holds.
func (m *Metrics) SampleCount() int { return len(m.earWindow) }

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}
