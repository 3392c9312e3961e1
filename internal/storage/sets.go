package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RecordSet writes actual performance into a set exactly once. The
// session row is share-locked so a concurrent complete/cancel (which
// must update that row) serializes against this write, and the set
// update itself is a compare-and-set on the actual fields being null.
func (db *DB) RecordSet(ctx context.Context, sessionID, setID uuid.UUID, reps int, weight float64, notes string, at time.Time) (*models.SessionSet, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status models.SessionStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM sessions WHERE id = $1 FOR SHARE`, sessionID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	if status != models.StatusInProgress {
		return nil, session.ErrInvalidState
	}

	// A set id that exists but belongs to another session is reported
	// as not found rather than leaking another session's data.
	var set models.SessionSet
	err = tx.QueryRow(ctx,
		`SELECT ss.id, ss.session_exercise_id, ss.workout_set_id,
		        ss.planned_reps, ss.planned_weight, ss.set_type, ss.order_index, ss.notes,
		        ss.actual_reps, ss.actual_weight, ss.completed_at
		 FROM session_sets ss
		 JOIN session_exercises se ON se.id = ss.session_exercise_id
		 WHERE ss.id = $1 AND se.session_id = $2
		 FOR UPDATE OF ss`,
		setID, sessionID).
		Scan(&set.ID, &set.SessionExerciseID, &set.WorkoutSetID,
			&set.PlannedReps, &set.PlannedWeight, &set.SetType, &set.OrderIndex, &set.Notes,
			&set.ActualReps, &set.ActualWeight, &set.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session set: %w", err)
	}
	if set.Logged() {
		return nil, session.ErrSetAlreadyCompleted
	}

	if notes == "" {
		notes = set.Notes
	}
	tag, err := tx.Exec(ctx,
		`UPDATE session_sets
		 SET actual_reps = $2, actual_weight = $3, completed_at = $4, notes = $5
		 WHERE id = $1 AND actual_reps IS NULL AND actual_weight IS NULL`,
		setID, reps, weight, at, notes)
	if err != nil {
		return nil, fmt.Errorf("updating session set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, session.ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing set record: %w", err)
	}

	set.ActualReps = &reps
	set.ActualWeight = &weight
	set.CompletedAt = &at
	set.Notes = notes
	return &set, nil
}
