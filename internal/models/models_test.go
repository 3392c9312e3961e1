package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseSessionStatus(t *testing.T) {
	for _, valid := range []string{"in_progress", "completed", "cancelled"} {
		if _, err := ParseSessionStatus(valid); err != nil {
			t.Errorf("ParseSessionStatus(%q) = %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "done", "IN_PROGRESS", "canceled"} {
		if _, err := ParseSessionStatus(invalid); err == nil {
			t.Errorf("ParseSessionStatus(%q) accepted", invalid)
		}
	}
}

func TestParseSetType(t *testing.T) {
	for _, valid := range []string{"warmup", "normal", "failure", "dropset"} {
		if _, err := ParseSetType(valid); err != nil {
			t.Errorf("ParseSetType(%q) = %v", valid, err)
		}
	}
	if _, err := ParseSetType("amrap"); err == nil {
		t.Error("ParseSetType(\"amrap\") accepted")
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusInProgress.Terminal() {
		t.Error("in_progress must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
}

func TestSessionDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	sess := Session{StartedAt: start}

	now := start.Add(45 * time.Minute)
	if d := sess.Duration(now); d != 45*time.Minute {
		t.Errorf("in-progress duration = %v, want 45m", d)
	}

	end := start.Add(time.Hour)
	sess.CompletedAt = &end
	// Once terminal, the clock argument is ignored.
	if d := sess.Duration(end.Add(24 * time.Hour)); d != time.Hour {
		t.Errorf("completed duration = %v, want 1h", d)
	}
}

func TestSessionMarshalDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(50 * time.Minute)
	sess := Session{ID: uuid.New(), StartedAt: start, CompletedAt: &end, Status: StatusCompleted}

	raw, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["duration_minutes"] != float64(50) {
		t.Errorf("duration_minutes = %v, want 50", out["duration_minutes"])
	}
}

func TestSetLogged(t *testing.T) {
	reps, weight := 8, 60.0
	cases := []struct {
		name string
		set  SessionSet
		want bool
	}{
		{"neither", SessionSet{}, false},
		{"reps only", SessionSet{ActualReps: &reps}, false},
		{"weight only", SessionSet{ActualWeight: &weight}, false},
		{"both", SessionSet{ActualReps: &reps, ActualWeight: &weight}, true},
	}
	for _, tc := range cases {
		if got := tc.set.Logged(); got != tc.want {
			t.Errorf("%s: Logged() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLoggedVolume(t *testing.T) {
	reps1, weight1 := 10, 50.0
	reps2, weight2 := 0, 60.0
	sess := Session{
		Exercises: []SessionExercise{
			{Sets: []SessionSet{
				{ActualReps: &reps1, ActualWeight: &weight1},
				{PlannedReps: 8, PlannedWeight: 100}, // unlogged
			}},
			{Sets: []SessionSet{
				{ActualReps: &reps2, ActualWeight: &weight2}, // zero reps counts as zero
			}},
		},
	}
	if v := sess.LoggedVolume(); v != 500 {
		t.Errorf("LoggedVolume = %v, want 500", v)
	}
}
