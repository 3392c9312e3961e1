package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the closed set of workout session states.
// InProgress is the only non-terminal state.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusCancelled  SessionStatus = "cancelled"
)

// Terminal reports whether the status has no outgoing transitions.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseSessionStatus validates a status string from an API query or payload.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch st := SessionStatus(s); st {
	case StatusInProgress, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown session status %q", s)
}

// SetType classifies a planned set.
type SetType string

const (
	SetWarmup  SetType = "warmup"
	SetNormal  SetType = "normal"
	SetFailure SetType = "failure"
	SetDropset SetType = "dropset"
)

// ParseSetType validates a set type string.
func ParseSetType(s string) (SetType, error) {
	switch t := SetType(s); t {
	case SetWarmup, SetNormal, SetFailure, SetDropset:
		return t, nil
	}
	return "", fmt.Errorf("unknown set type %q", s)
}

// PRType identifies which metric a personal record tracks.
type PRType string

const (
	PRMaxWeight    PRType = "max_weight"
	PRMaxReps      PRType = "max_reps"
	PRMaxSingleSet PRType = "max_single_set"
	PRMaxVolume    PRType = "max_volume"
)

// PRTypes lists all record metrics in a fixed order.
var PRTypes = []PRType{PRMaxWeight, PRMaxReps, PRMaxSingleSet, PRMaxVolume}

// Exercise is a catalog entry (e.g. "Bench Press"). Read-only here.
type Exercise struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscle_group,omitempty"`
	Equipment   string    `json:"equipment,omitempty"`
}

// Workout is a reusable template: ordered exercises with planned sets.
// Owned by the catalog; the session core only reads it.
type Workout struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Notes     string            `json:"notes,omitempty"`
	Exercises []WorkoutExercise `json:"exercises,omitempty"`
}

// WorkoutExercise is an exercise slotted into a workout template.
type WorkoutExercise struct {
	ID         uuid.UUID    `json:"id"`
	WorkoutID  uuid.UUID    `json:"workout_id"`
	ExerciseID uuid.UUID    `json:"exercise_id"`
	OrderIndex int          `json:"order_index"`
	Notes      string       `json:"notes,omitempty"`
	Sets       []WorkoutSet `json:"sets,omitempty"`
}

// WorkoutSet is a planned set within a workout template.
type WorkoutSet struct {
	ID                uuid.UUID `json:"id"`
	WorkoutExerciseID uuid.UUID `json:"workout_exercise_id"`
	PlannedReps       int       `json:"planned_reps"`
	PlannedWeight     float64   `json:"planned_weight"`
	SetType           SetType   `json:"set_type"`
	OrderIndex        int       `json:"order_index"`
	Notes             string    `json:"notes,omitempty"`
}

// Session is one execution of a workout template. Created in_progress
// with a full snapshot of the template's exercises and sets; mutated
// only by state transitions; never deleted.
type Session struct {
	ID          uuid.UUID         `json:"id"`
	WorkoutID   uuid.UUID         `json:"workout_id"`
	Status      SessionStatus     `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	TotalVolume float64           `json:"total_volume"`
	Exercises   []SessionExercise `json:"exercises,omitempty"`
}

// Duration derives elapsed time as (completed_at ?? now) - started_at.
// Never stored; any reader computes it.
func (s *Session) Duration(now time.Time) time.Duration {
	end := now
	if s.CompletedAt != nil {
		end = *s.CompletedAt
	}
	return end.Sub(s.StartedAt)
}

// MarshalJSON adds the derived duration_minutes field to the wire
// representation.
func (s Session) MarshalJSON() ([]byte, error) {
	type alias Session
	return json.Marshal(struct {
		alias
		DurationMinutes int `json:"duration_minutes"`
	}{alias(s), int(s.Duration(time.Now()).Minutes())})
}

// LoggedVolume sums reps x weight over all logged sets in the session.
func (s *Session) LoggedVolume() float64 {
	var total float64
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Logged() {
				total += float64(*set.ActualReps) * *set.ActualWeight
			}
		}
	}
	return total
}

// SessionExercise is a snapshot of a WorkoutExercise taken at session
// start. ExerciseID is denormalized so history survives later template
// edits.
type SessionExercise struct {
	ID                uuid.UUID    `json:"id"`
	SessionID         uuid.UUID    `json:"session_id"`
	WorkoutExerciseID uuid.UUID    `json:"workout_exercise_id"`
	ExerciseID        uuid.UUID    `json:"exercise_id"`
	OrderIndex        int          `json:"order_index"`
	Notes             string       `json:"notes,omitempty"`
	Sets              []SessionSet `json:"sets,omitempty"`
}

// SessionSet is a snapshot of a planned set plus the actual performance
// logged against it. Actual fields are both nil or both set, and once
// set the row is immutable.
type SessionSet struct {
	ID                uuid.UUID  `json:"id"`
	SessionExerciseID uuid.UUID  `json:"session_exercise_id"`
	WorkoutSetID      uuid.UUID  `json:"workout_set_id"`
	PlannedReps       int        `json:"planned_reps"`
	PlannedWeight     float64    `json:"planned_weight"`
	SetType           SetType    `json:"set_type"`
	OrderIndex        int        `json:"order_index"`
	Notes             string     `json:"notes,omitempty"`
	ActualReps        *int       `json:"actual_reps,omitempty"`
	ActualWeight      *float64   `json:"actual_weight,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// Logged reports whether actual performance has been recorded.
func (s *SessionSet) Logged() bool {
	return s.ActualReps != nil && s.ActualWeight != nil
}

// PersonalRecord is one entry in the append-only PR ledger. The current
// best for an (exercise, pr_type) pair is the row with the greatest
// AchievedValue, earliest AchievedAt on ties.
type PersonalRecord struct {
	ID            uuid.UUID  `json:"id"`
	ExerciseID    uuid.UUID  `json:"exercise_id"`
	SessionID     uuid.UUID  `json:"session_id"`
	SessionSetID  *uuid.UUID `json:"session_set_id,omitempty"`
	PRType        PRType     `json:"pr_type"`
	AchievedValue float64    `json:"achieved_value"`
	AchievedAt    time.Time  `json:"achieved_at"`
}
