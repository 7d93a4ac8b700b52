// Package detect implements the fatigue-signal state machines: eye-closure,
// yawn, head-turn, and face-presence tracking over per-frame landmark data.
package detect

import "time"

// EventType names a fatigue/distraction signal.
type EventType string

const (
	EventSleepy   EventType = "Sleepy"
	EventYawn     EventType = "Yawn"
	EventHeadTurn EventType = "HeadTurn"
	EventNoFace   EventType = "NoFaceDetected"
	EventCoaching EventType = "Coaching"
)

// Event is one semantic detection emitted for a frame.
type Event struct {
	Type     EventType
	Severity float64 // 0-1
	Message  string
	At       time.Time

	// Actionable marks events that should reach the intervention engine.
	// Isolated yawns, for example, are logged but not acted on.
	Actionable bool
}

// Recovery reports that the driver corrected the condition that previously
// triggered an event of the given type.
type Recovery struct {
	Type EventType
	At   time.Time
}

// Result is what a detector returns for one frame: zero or one event and
// zero or one recovery.
type Result struct {
	Event    *Event
	Recovery *Recovery
}
