// Package records computes personal-record candidates from a completed
// session and compares them against the athlete's prior bests. All
// functions are pure; the storage layer invokes them inside the
// completion transaction so PR inserts commit (or roll back) together
// with the session transition.
package records

import (
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Key identifies one slot in the PR ledger.
type Key struct {
	ExerciseID uuid.UUID
	Type       models.PRType
}

// Candidate is a metric value achieved in one session for one exercise.
// SetID attributes the value to a specific set where that makes sense
// (max_weight, max_reps, max_single_set); nil for max_volume.
type Candidate struct {
	ExerciseID uuid.UUID
	Type       models.PRType
	Value      float64
	SetID      *uuid.UUID
}

// metrics accumulates per-exercise stats over logged sets.
type metrics struct {
	maxWeight    float64
	maxWeightSet uuid.UUID
	maxReps      int
	maxRepsSet   uuid.UUID
	maxSingle    float64
	maxSingleSet uuid.UUID
	totalVolume  float64
	logged       bool
}

// Candidates computes the four metric candidates per exercise from the
// session's logged sets. Sets without actual values are skipped — the
// athlete did not perform them. Sets for the same exercise are pooled
// across session exercises. Output order follows first appearance of
// each exercise in the session, so results are deterministic.
func Candidates(sess *models.Session) []Candidate {
	byExercise := make(map[uuid.UUID]*metrics)
	var order []uuid.UUID

	for _, ex := range sess.Exercises {
		m, ok := byExercise[ex.ExerciseID]
		if !ok {
			m = &metrics{}
			byExercise[ex.ExerciseID] = m
			order = append(order, ex.ExerciseID)
		}
		for _, set := range ex.Sets {
			if !set.Logged() {
				continue
			}
			reps := *set.ActualReps
			weight := *set.ActualWeight
			volume := float64(reps) * weight

			if !m.logged || weight > m.maxWeight {
				m.maxWeight = weight
				m.maxWeightSet = set.ID
			}
			if !m.logged || reps > m.maxReps {
				m.maxReps = reps
				m.maxRepsSet = set.ID
			}
			if !m.logged || volume > m.maxSingle {
				m.maxSingle = volume
				m.maxSingleSet = set.ID
			}
			m.totalVolume += volume
			m.logged = true
		}
	}

	var out []Candidate
	for _, exID := range order {
		m := byExercise[exID]
		if !m.logged {
			continue
		}
		out = append(out,
			Candidate{ExerciseID: exID, Type: models.PRMaxWeight, Value: m.maxWeight, SetID: ref(m.maxWeightSet)},
			Candidate{ExerciseID: exID, Type: models.PRMaxReps, Value: float64(m.maxReps), SetID: ref(m.maxRepsSet)},
			Candidate{ExerciseID: exID, Type: models.PRMaxSingleSet, Value: m.maxSingle, SetID: ref(m.maxSingleSet)},
			Candidate{ExerciseID: exID, Type: models.PRMaxVolume, Value: m.totalVolume},
		)
	}
	return out
}

// NewRecords compares candidates against prior bests and returns the
// ledger rows for strict improvements. A candidate with no prior best
// is always a record; an equal value never is, so repeating an
// identical performance emits nothing and the earlier achievement
// keeps the record.
func NewRecords(candidates []Candidate, bests map[Key]float64, sessionID uuid.UUID, achievedAt time.Time) []models.PersonalRecord {
	var out []models.PersonalRecord
	for _, c := range candidates {
		best, exists := bests[Key{ExerciseID: c.ExerciseID, Type: c.Type}]
		if exists && c.Value <= best {
			continue
		}
		out = append(out, models.PersonalRecord{
			ID:            uuid.New(),
			ExerciseID:    c.ExerciseID,
			SessionID:     sessionID,
			SessionSetID:  c.SetID,
			PRType:        c.Type,
			AchievedValue: c.Value,
			AchievedAt:    achievedAt,
		})
	}
	return out
}

func ref(id uuid.UUID) *uuid.UUID { return &id }
