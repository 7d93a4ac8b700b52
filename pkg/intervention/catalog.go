// Package intervention selects adaptive responses to fatigue events and
// learns per-driver effectiveness scores from observed recoveries.
package intervention

// Definition is a static catalog entry, immutable at runtime.
type Definition struct {
	// Type identifies the intervention in profiles and records.
	Type string

	// Level is the escalation tier (1-3) this intervention serves.
	Level int

	// For names the single event type this entry is dedicated to, bypassing
	// escalation. Empty for general-purpose entries.
	For string

	// Messages are the candidate texts, one chosen per delivery.
	Messages []string

	// DefaultScore seeds the effectiveness score for drivers who have not
	// seen this intervention yet.
	DefaultScore float64
}

// Catalog returns the static intervention catalog. Order matters: ties on
// effectiveness score resolve to the earlier entry.
func Catalog() []Definition {
	return []Definition{
		{
			Type:  "Visual_Gentle",
			Level: 1,
			Messages: []string{
				"Stay focused on the road ahead.",
				"Keep your eyes up and scanning.",
			},
			DefaultScore: 0.5,
		},
		{
			Type:  "Audio_Mild",
			Level: 1,
			Messages: []string{
				"A quick reminder to stay alert.",
				"Take a deep breath and refocus on driving.",
			},
			DefaultScore: 0.5,
		},
		{
			Type:  "Audio_Moderate",
			Level: 2,
			Messages: []string{
				"You seem tired. Consider opening a window or adjusting the temperature.",
				"Signs of fatigue detected. Please pay close attention to the road.",
			},
			DefaultScore: 0.6,
		},
		{
			Type:  "Visual_Urgent",
			Level: 2,
			Messages: []string{
				"Repeated fatigue signs detected. Stay alert.",
				"Your attention is drifting. Focus on the road now.",
			},
			DefaultScore: 0.55,
		},
		{
			Type:  "Audio_Critical",
			Level: 3,
			Messages: []string{
				"You are showing strong signs of fatigue. Please pull over and rest as soon as it is safe.",
				"Warning: drowsiness detected. Find a safe place to stop and take a break.",
			},
			DefaultScore: 0.7,
		},
		{
			Type:  "Alert_Emergency",
			Level: 3,
			Messages: []string{
				"Immediate attention required. Pull over when safe.",
			},
			DefaultScore: 0.65,
		},
		{
			Type:  "Audio_FacePresence",
			Level: 2,
			For:   "NoFaceDetected",
			Messages: []string{
				"We can't see you. Please face the camera and keep your eyes on the road.",
				"Driver not visible. Adjust your position so monitoring can continue.",
			},
			DefaultScore: 0.5,
		},
		{
			Type:  "Coaching",
			Level: 1,
			For:   "Coaching",
			Messages: []string{
				// Coaching deliveries carry pre-authored text; this entry
				// only exists so the record and scoring have a home.
				"Here is a tip to help you stay alert.",
			},
			DefaultScore: 0.6,
		},
	}
}

// DefaultScore returns the catalog default for an intervention type, or the
// score floor when the type is unknown.
func DefaultScore(catalog []Definition, interventionType string) float64 {
	for _, def := range catalog {
		if def.Type == interventionType {
			return def.DefaultScore
		}
	}
	return 0.1
}
