// Package session implements the workout session lifecycle: starting a
// session from a workout template, recording set performance, and the
// terminal complete/cancel transitions with atomic PR detection.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/google/uuid"
)

// Manager owns the session state machine. All mutations go through a
// Store, which provides the transaction boundary.
type Manager struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewManager creates a Manager backed by the given store.
func NewManager(store Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log, now: time.Now}
}

// Start creates a session from a workout template. The template's
// exercises and sets are deep-copied into session rows so later edits
// to the workout never rewrite history.
func (m *Manager) Start(ctx context.Context, workoutID uuid.UUID, notes string) (*models.Session, error) {
	workout, err := m.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	sess := snapshot(workout, notes, m.now().UTC())
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	m.log.Info("session started",
		"session_id", sess.ID,
		"workout_id", workoutID,
		"exercises", len(sess.Exercises),
	)
	return sess, nil
}

// snapshot builds an in_progress session mirroring the template, with
// actual fields unset on every set.
func snapshot(w *models.Workout, notes string, at time.Time) *models.Session {
	sess := &models.Session{
		ID:        uuid.New(),
		WorkoutID: w.ID,
		Status:    models.StatusInProgress,
		Notes:     notes,
		StartedAt: at,
	}
	for _, we := range w.Exercises {
		se := models.SessionExercise{
			ID:                uuid.New(),
			SessionID:         sess.ID,
			WorkoutExerciseID: we.ID,
			ExerciseID:        we.ExerciseID,
			OrderIndex:        we.OrderIndex,
			Notes:             we.Notes,
		}
		for _, ws := range we.Sets {
			se.Sets = append(se.Sets, models.SessionSet{
				ID:                uuid.New(),
				SessionExerciseID: se.ID,
				WorkoutSetID:      ws.ID,
				PlannedReps:       ws.PlannedReps,
				PlannedWeight:     ws.PlannedWeight,
				SetType:           ws.SetType,
				OrderIndex:        ws.OrderIndex,
				Notes:             ws.Notes,
			})
		}
		sess.Exercises = append(sess.Exercises, se)
	}
	return sess
}

// RecordSet logs actual performance against one set. Both actual
// values must be supplied together; a logged set is immutable. PR
// detection never runs here — it is deferred to Complete so every
// comparison sees the session's final performance.
func (m *Manager) RecordSet(ctx context.Context, sessionID, setID uuid.UUID, actualReps *int, actualWeight *float64, notes string) (*models.SessionSet, error) {
	if actualReps == nil || actualWeight == nil {
		return nil, fmt.Errorf("%w: actual_reps and actual_weight must be supplied together", ErrValidation)
	}
	if *actualReps < 0 {
		return nil, fmt.Errorf("%w: actual_reps must not be negative", ErrValidation)
	}
	if *actualWeight < 0 {
		return nil, fmt.Errorf("%w: actual_weight must not be negative", ErrValidation)
	}

	set, err := m.store.RecordSet(ctx, sessionID, setID, *actualReps, *actualWeight, notes, m.now().UTC())
	if err != nil {
		return nil, err
	}

	m.log.Info("set recorded",
		"session_id", sessionID,
		"set_id", setID,
		"reps", *actualReps,
		"weight", *actualWeight,
	)
	return set, nil
}

// Complete transitions the session to completed and runs PR detection
// over its logged sets. The transition, the total-volume rollup, and
// any new PR rows commit in one transaction; if detection fails the
// session stays in_progress.
func (m *Manager) Complete(ctx context.Context, sessionID uuid.UUID) (*models.Session, []models.PersonalRecord, error) {
	at := m.now().UTC()
	detect := func(sess *models.Session, bests map[records.Key]float64) []models.PersonalRecord {
		return records.NewRecords(records.Candidates(sess), bests, sess.ID, at)
	}

	sess, prs, err := m.store.FinishSession(ctx, sessionID, models.StatusCompleted, at, detect)
	if err != nil {
		return nil, nil, err
	}

	m.log.Info("session completed",
		"session_id", sessionID,
		"total_volume", sess.TotalVolume,
		"new_records", len(prs),
	)
	return sess, prs, nil
}

// Cancel transitions the session to cancelled. No PR detection ever
// runs for a cancelled session, regardless of what was logged.
func (m *Manager) Cancel(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, _, err := m.store.FinishSession(ctx, sessionID, models.StatusCancelled, m.now().UTC(), nil)
	if err != nil {
		return nil, err
	}

	m.log.Info("session cancelled", "session_id", sessionID)
	return sess, nil
}

// GetSession returns a session with nested exercises and sets.
func (m *Manager) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return m.store.GetSession(ctx, id)
}

// ListSessions returns sessions newest first, optionally filtered by
// exact status.
func (m *Manager) ListSessions(ctx context.Context, status *models.SessionStatus) ([]models.Session, error) {
	return m.store.ListSessions(ctx, status)
}

// ListRecords returns the PRs achieved by one session.
func (m *Manager) ListRecords(ctx context.Context, sessionID uuid.UUID) ([]models.PersonalRecord, error) {
	return m.store.ListRecords(ctx, sessionID)
}

// CurrentRecords returns the standing best per (exercise, pr_type).
func (m *Manager) CurrentRecords(ctx context.Context) ([]models.PersonalRecord, error) {
	return m.store.CurrentRecords(ctx)
}

// RecordSummary aggregates the PR ledger.
func (m *Manager) RecordSummary(ctx context.Context) (*RecordSummary, error) {
	return m.store.RecordSummary(ctx)
}

// GetWorkout returns a catalog template with nested plan data.
func (m *Manager) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	return m.store.GetWorkout(ctx, id)
}

// ListWorkouts returns the catalog templates.
func (m *Manager) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	return m.store.ListWorkouts(ctx)
}
