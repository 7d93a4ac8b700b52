// Package eventlog keeps a rolling one-minute record of fatigue events and
// builds the short status summary handed to the coaching text provider.
package eventlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-driveguard/pkg/detect"
)

// window is how far back the summary looks.
const window = time.Minute

type entry struct {
	at   time.Time
	kind detect.EventType
}

// Tracker is an append-only timestamped event log.
type Tracker struct {
	mu      sync.Mutex
	entries []entry
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// Add records one event occurrence.
func (t *Tracker) Add(kind detect.EventType, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry{at: at, kind: kind})
}

// Len returns the number of retained entries (including expired ones not yet
// pruned by Summary).
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Reset discards all entries.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

// Summary prunes entries older than one minute and returns a fixed-shape
// tally of what remains. An empty string means no advisory is needed.
func (t *Tracker) Summary(now time.Time) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-window)
	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.at.After(cutoff) {
			kept = append(kept, e)
		}
	}
	t.entries = kept

	if len(t.entries) == 0 {
		return ""
	}

	var yawns, turns, sleepy, noFace int
	for _, e := range t.entries {
		switch e.kind {
		case detect.EventYawn:
			yawns++
		case detect.EventHeadTurn:
			turns++
		case detect.EventSleepy:
			sleepy++
		case detect.EventNoFace:
			noFace++
		}
	}

	return fmt.Sprintf(
		"In the last minute the driver had %d yawn(s), %d head turn(s), %d sleepy episode(s), and %d face-lost episode(s).",
		yawns, turns, sleepy, noFace)
}
