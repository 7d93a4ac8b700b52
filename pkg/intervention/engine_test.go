package intervention

import (
	"math"
	"testing"
	"time"

	"github.com/teslashibe/go-driveguard/pkg/clock"
	"github.com/teslashibe/go-driveguard/pkg/profile"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func newTestEngine(t *testing.T, seed func(*profile.Profile)) (*Engine, *clock.Fake) {
	t.Helper()

	store, err := profile.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if seed != nil {
		p := profile.New("driver")
		seed(p)
		if err := store.Save(p); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}

	clk := clock.NewFake(time.Unix(3000, 0))
	return NewEngine(store, "driver", clk), clk
}

func containsMessage(def Definition, message string) bool {
	for _, m := range def.Messages {
		if m == message {
			return true
		}
	}
	return false
}

func TestEngine_SelectLevelOneByDefault(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	def, message, err := e.Select("Sleepy", 0.3, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	// Level 1 entries tie on score; catalog order breaks the tie.
	if def.Type != "Visual_Gentle" {
		t.Errorf("selected: got %q, want Visual_Gentle", def.Type)
	}
	if !containsMessage(def, message) {
		t.Errorf("message %q is not one of the definition's candidates", message)
	}
	if e.OpenCount("Sleepy") != 1 {
		t.Errorf("open count: got %d, want 1", e.OpenCount("Sleepy"))
	}
	if e.Profile().EventCounts["Sleepy"] != 1 {
		t.Errorf("event count: got %d, want 1", e.Profile().EventCounts["Sleepy"])
	}
}

func TestEngine_EscalatesByLifetimeCount(t *testing.T) {
	e, _ := newTestEngine(t, func(p *profile.Profile) {
		p.EventCounts["Sleepy"] = 2
	})

	// The third lifetime event reaches level 2.
	def, _, err := e.Select("Sleepy", 0.3, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if def.Level != 2 {
		t.Errorf("level: got %d, want 2", def.Level)
	}
	if def.Type != "Audio_Moderate" {
		t.Errorf("selected: got %q, want Audio_Moderate (highest level-2 score)", def.Type)
	}
}

func TestEngine_SeverityForcesLevelThree(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	def, _, err := e.Select("Sleepy", 0.85, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if def.Level != 3 {
		t.Errorf("level: got %d, want 3", def.Level)
	}
	if def.Type != "Audio_Critical" {
		t.Errorf("selected: got %q, want Audio_Critical", def.Type)
	}
}

func TestEngine_SeverityRaisesToLevelTwo(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	def, _, err := e.Select("HeadTurn", 0.6, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if def.Level != 2 {
		t.Errorf("level: got %d, want 2", def.Level)
	}
}

func TestEngine_LearnedScoreWinsSelection(t *testing.T) {
	e, _ := newTestEngine(t, func(p *profile.Profile) {
		p.SetScore("Visual_Urgent", 0.8)
	})

	def, _, err := e.Select("Sleepy", 0.65, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if def.Type != "Visual_Urgent" {
		t.Errorf("selected: got %q, want Visual_Urgent (learned 0.8 beats default 0.6)", def.Type)
	}
}

func TestEngine_DedicatedEntriesBypassEscalation(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	// Severity high enough to force level 3, but the dedicated entry wins.
	def, _, err := e.Select("NoFaceDetected", 0.9, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if def.Type != "Audio_FacePresence" {
		t.Errorf("selected: got %q, want Audio_FacePresence", def.Type)
	}

	def, message, err := e.Select("Coaching", 0.6, "Try opening a window for fresh air.")
	if err != nil {
		t.Fatalf("Select coaching: %v", err)
	}
	if def.Type != "Coaching" {
		t.Errorf("selected: got %q, want Coaching", def.Type)
	}
	if message != "Try opening a window for fresh air." {
		t.Errorf("pre-authored message not used verbatim: got %q", message)
	}
}

func TestEngine_ResolveEffectiveFastRecovery(t *testing.T) {
	e, clk := newTestEngine(t, nil)

	def, _, err := e.Select("Sleepy", 0.3, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	clk.Advance(time.Second)
	e.Resolve("Sleepy", true)

	// +0.1 effective, +0.05 fast recovery
	want := def.DefaultScore + 0.15
	got := e.Profile().Score(def.Type, 0)
	if !floatEquals(got, want) {
		t.Errorf("score: got %v, want %v", got, want)
	}
	if e.OpenCount("Sleepy") != 0 {
		t.Errorf("open count after resolve: got %d, want 0", e.OpenCount("Sleepy"))
	}

	rec := e.Profile().History[0]
	if !rec.Resolved || !rec.Effective {
		t.Errorf("record not resolved effective: %+v", rec)
	}
	if !floatEquals(rec.ResponseTime, 1.0) {
		t.Errorf("response time: got %v, want 1.0", rec.ResponseTime)
	}
	if e.Profile().Recovery.Count != 1 {
		t.Errorf("recovery count: got %d, want 1", e.Profile().Recovery.Count)
	}
}

func TestEngine_ResolveEffectiveSlowRecovery(t *testing.T) {
	e, clk := newTestEngine(t, nil)

	def, _, err := e.Select("Sleepy", 0.3, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	clk.Advance(6 * time.Second)
	e.Resolve("Sleepy", true)

	// +0.1 effective, -0.03 slow recovery
	want := def.DefaultScore + 0.07
	got := e.Profile().Score(def.Type, 0)
	if !floatEquals(got, want) {
		t.Errorf("score: got %v, want %v", got, want)
	}
}

func TestEngine_ResolveIneffective(t *testing.T) {
	e, clk := newTestEngine(t, nil)

	def, _, err := e.Select("Sleepy", 0.3, "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	clk.Advance(time.Second)
	e.Resolve("Sleepy", false)

	want := def.DefaultScore - 0.1
	got := e.Profile().Score(def.Type, 0)
	if !floatEquals(got, want) {
		t.Errorf("score: got %v, want %v", got, want)
	}
	if e.Profile().Recovery.Count != 0 {
		t.Error("ineffective resolutions must not feed recovery stats")
	}
}

func TestEngine_ResolveClosesAllOpenRecords(t *testing.T) {
	e, clk := newTestEngine(t, nil)

	if _, _, err := e.Select("Sleepy", 0.3, ""); err != nil {
		t.Fatalf("first Select: %v", err)
	}
	clk.Advance(time.Second)
	if _, _, err := e.Select("Sleepy", 0.3, ""); err != nil {
		t.Fatalf("second Select: %v", err)
	}
	if e.OpenCount("Sleepy") != 2 {
		t.Fatalf("open count: got %d, want 2", e.OpenCount("Sleepy"))
	}

	clk.Advance(500 * time.Millisecond)
	e.Resolve("Sleepy", true)

	if e.OpenCount("Sleepy") != 0 {
		t.Errorf("open count after resolve: got %d, want 0", e.OpenCount("Sleepy"))
	}
	for i, rec := range e.Profile().History {
		if !rec.Resolved {
			t.Errorf("record %d not resolved", i)
		}
	}
	if e.Profile().Recovery.Count != 2 {
		t.Errorf("recovery count: got %d, want 2", e.Profile().Recovery.Count)
	}
}

func TestEngine_ScoreClampsAtBounds(t *testing.T) {
	e, clk := newTestEngine(t, func(p *profile.Profile) {
		p.SetScore("Visual_Gentle", 0.88)
	})

	if _, _, err := e.Select("Sleepy", 0.3, ""); err != nil {
		t.Fatalf("Select: %v", err)
	}
	clk.Advance(time.Second)
	e.Resolve("Sleepy", true)

	if got := e.Profile().Score("Visual_Gentle", 0); got != profile.ScoreMax {
		t.Errorf("score above max: got %v, want %v", got, profile.ScoreMax)
	}
}

func TestEngine_ResolveWithNothingOpenIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	e.Resolve("Sleepy", true)

	if len(e.Profile().History) != 0 {
		t.Error("resolve with nothing open should not touch history")
	}
	if e.Profile().Recovery.Count != 0 {
		t.Error("resolve with nothing open should not touch recovery stats")
	}
}
