// Package profile holds the per-driver learning state: event counts,
// intervention effectiveness scores, and the intervention history.
package profile

import "time"

// Effectiveness score bounds. Scores are clamped here no matter how many
// adjustments accumulate.
const (
	ScoreMin = 0.1
	ScoreMax = 0.9
)

// InterventionRecord is created once per delivered intervention. ResponseTime
// and Effective are late-bound when the matching recovery is observed.
type InterventionRecord struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	EventType        string    `json:"event_type"`
	InterventionType string    `json:"intervention_type"`
	Message          string    `json:"message"`
	Timestamp        time.Time `json:"timestamp"`
	Severity         float64   `json:"severity"`
	ResponseTime     float64   `json:"response_time_seconds"`
	Effective        bool      `json:"effective"`
	Resolved         bool      `json:"resolved"`
}

// RecoveryStats accumulates how quickly the driver corrects events.
type RecoveryStats struct {
	Count       int     `json:"count"`
	MeanSeconds float64 `json:"mean_seconds"`
}

// Observe folds one recovery time into the running mean.
func (s *RecoveryStats) Observe(seconds float64) {
	s.Count++
	s.MeanSeconds += (seconds - s.MeanSeconds) / float64(s.Count)
}

// Profile is the persistence unit for one driver id.
type Profile struct {
	DriverID    string                `json:"driver_id"`
	EventCounts map[string]int        `json:"event_counts"`
	Scores      map[string]float64    `json:"scores"`
	History     []*InterventionRecord `json:"history"`
	Recovery    RecoveryStats         `json:"recovery"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// New creates a default profile for a driver id.
func New(driverID string) *Profile {
	now := time.Now()
	return &Profile{
		DriverID:    driverID,
		EventCounts: make(map[string]int),
		Scores:      make(map[string]float64),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Score returns the learned effectiveness score for an intervention type,
// falling back to the catalog default for unseen types.
func (p *Profile) Score(interventionType string, catalogDefault float64) float64 {
	if score, ok := p.Scores[interventionType]; ok {
		return score
	}
	return catalogDefault
}

// SetScore stores a score, clamped into [ScoreMin, ScoreMax].
func (p *Profile) SetScore(interventionType string, score float64) {
	p.Scores[interventionType] = Clamp(score)
}

// Clamp bounds a score into [ScoreMin, ScoreMax].
func Clamp(score float64) float64 {
	if score < ScoreMin {
		return ScoreMin
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return score
}
