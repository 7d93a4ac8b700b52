package intervention

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-driveguard/internal/log"
	"github.com/teslashibe/go-driveguard/pkg/clock"
	"github.com/teslashibe/go-driveguard/pkg/profile"
)

// Effectiveness score adjustments.
const (
	adjustEffective   = 0.1
	adjustIneffective = -0.1
	fastRecoveryBonus = 0.05
	slowRecoveryDrop  = 0.03

	fastRecoverySeconds = 2.0
	slowRecoverySeconds = 5.0
)

// Escalation thresholds.
const (
	countRaiseAt = 3 // lifetime count at which level 2 starts
	countForceAt = 7 // lifetime count at which level 3 is forced

	severityRaiseAt = 0.6
	severityForceAt = 0.8

	maxLevel = 3
)

// Engine combines intervention selection and effectiveness scoring for one
// driver. It owns the driver's profile for the duration of the session;
// concurrent sessions for the same driver id are not supported.
type Engine struct {
	catalog   []Definition
	store     *profile.Store
	prof      *profile.Profile
	clk       clock.Clock
	rng       *rand.Rand
	sessionID string
	logger    *slog.Logger

	mu   sync.Mutex
	open map[string][]*profile.InterventionRecord // event type -> open records
}

// NewEngine loads (or creates) the driver's profile and prepares a session.
func NewEngine(store *profile.Store, driverID string, clk clock.Clock) *Engine {
	return &Engine{
		catalog:   Catalog(),
		store:     store,
		prof:      store.Load(driverID),
		clk:       clk,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sessionID: uuid.New().String(),
		logger:    log.With("component", "intervention"),
		open:      make(map[string][]*profile.InterventionRecord),
	}
}

// SessionID returns the engine's session id.
func (e *Engine) SessionID() string { return e.sessionID }

// Profile returns the engine's live profile. Callers must treat it as
// read-only.
func (e *Engine) Profile() *profile.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prof
}

// Select picks an intervention for an event, records the delivery in the
// profile history, and returns the chosen definition and message. A
// pre-authored message (the coaching path) is used verbatim.
func (e *Engine) Select(eventType string, severity float64, preauthored string) (Definition, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.prof.EventCounts[eventType]++

	def, ok := e.choose(eventType, severity)
	if !ok {
		return Definition{}, "", fmt.Errorf("no intervention available for event %q", eventType)
	}

	message := preauthored
	if message == "" {
		message = def.Messages[e.rng.Intn(len(def.Messages))]
	}

	rec := &profile.InterventionRecord{
		ID:               uuid.New().String(),
		SessionID:        e.sessionID,
		EventType:        eventType,
		InterventionType: def.Type,
		Message:          message,
		Timestamp:        e.clk.Now(),
		Severity:         severity,
	}
	e.prof.History = append(e.prof.History, rec)
	e.open[eventType] = append(e.open[eventType], rec)

	if err := e.store.Save(e.prof); err != nil {
		e.logger.Warn("profile save failed", "driver", e.prof.DriverID, "error", err)
	}

	e.logger.Info("intervention selected",
		"event", eventType,
		"intervention", def.Type,
		"level", def.Level,
		"severity", severity,
	)
	return def, message, nil
}

// choose resolves the catalog entry for an event. Dedicated single-purpose
// entries bypass escalation entirely.
func (e *Engine) choose(eventType string, severity float64) (Definition, bool) {
	for _, def := range e.catalog {
		if def.For == eventType {
			return def, true
		}
	}

	level := e.escalationLevel(eventType, severity)
	eligible := e.eligible(level)
	if len(eligible) == 0 {
		return Definition{}, false
	}

	best := eligible[0]
	bestScore := e.prof.Score(best.Type, best.DefaultScore)
	for _, def := range eligible[1:] {
		if score := e.prof.Score(def.Type, def.DefaultScore); score > bestScore {
			best, bestScore = def, score
		}
	}
	return best, true
}

// escalationLevel computes the 1-3 tier from lifetime event count and
// severity.
func (e *Engine) escalationLevel(eventType string, severity float64) int {
	level := 1

	count := e.prof.EventCounts[eventType]
	if count >= countForceAt {
		level = maxLevel
	} else if count >= countRaiseAt && level < 2 {
		level = 2
	}

	if severity >= severityForceAt {
		level = maxLevel
	} else if severity >= severityRaiseAt && level < 2 {
		level = 2
	}

	return level
}

// eligible returns catalog entries at exactly the computed level, falling
// back to everything at or below it when no exact match exists. Dedicated
// entries never participate in escalation.
func (e *Engine) eligible(level int) []Definition {
	var exact, below []Definition
	for _, def := range e.catalog {
		if def.For != "" {
			continue
		}
		if def.Level == level {
			exact = append(exact, def)
		}
		if def.Level <= level {
			below = append(below, def)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return below
}

// Resolve closes all open interventions of an event type against one
// observed outcome and updates their effectiveness scores. One eye-reopening
// resolves every open sleepy record at once.
func (e *Engine) Resolve(eventType string, effective bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.open[eventType]
	if len(records) == 0 {
		return
	}
	delete(e.open, eventType)

	now := e.clk.Now()
	for _, rec := range records {
		responseTime := now.Sub(rec.Timestamp).Seconds()

		adj := adjustIneffective
		if effective {
			adj = adjustEffective
			if responseTime < fastRecoverySeconds {
				adj += fastRecoveryBonus
			} else if responseTime > slowRecoverySeconds {
				adj -= slowRecoveryDrop
			}
		}

		prev := e.prof.Score(rec.InterventionType, DefaultScore(e.catalog, rec.InterventionType))
		e.prof.SetScore(rec.InterventionType, prev+adj)

		rec.ResponseTime = responseTime
		rec.Effective = effective
		rec.Resolved = true

		if effective {
			e.prof.Recovery.Observe(responseTime)
		}
	}

	if err := e.store.Save(e.prof); err != nil {
		e.logger.Warn("profile save failed", "driver", e.prof.DriverID, "error", err)
	}

	e.logger.Debug("interventions resolved",
		"event", eventType,
		"effective", effective,
		"count", len(records),
	)
}

// OpenCount returns how many interventions of an event type are awaiting
// resolution.
func (e *Engine) OpenCount(eventType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.open[eventType])
}
