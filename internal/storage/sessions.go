package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateSession inserts a session snapshot (session row, exercises,
// sets) in one transaction.
func (db *DB) CreateSession(ctx context.Context, sess *models.Session) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, workout_id, status, notes, started_at, total_volume)
		 VALUES ($1, $2, $3, $4, $5, 0)`,
		sess.ID, sess.WorkoutID, sess.Status, sess.Notes, sess.StartedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, ex := range sess.Exercises {
		_, err = tx.Exec(ctx,
			`INSERT INTO session_exercises (id, session_id, workout_exercise_id, exercise_id, order_index, notes)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ex.ID, ex.SessionID, ex.WorkoutExerciseID, ex.ExerciseID, ex.OrderIndex, ex.Notes)
		if err != nil {
			return fmt.Errorf("inserting session exercise: %w", err)
		}
		for _, set := range ex.Sets {
			_, err = tx.Exec(ctx,
				`INSERT INTO session_sets (id, session_exercise_id, workout_set_id,
				 planned_reps, planned_weight, set_type, order_index, notes)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				set.ID, set.SessionExerciseID, set.WorkoutSetID,
				set.PlannedReps, set.PlannedWeight, set.SetType, set.OrderIndex, set.Notes)
			if err != nil {
				return fmt.Errorf("inserting session set: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// GetSession retrieves a session with nested exercises and sets.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return loadSession(ctx, db.Pool, id)
}

// querier is the subset of pgx shared by Pool and Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadSession(ctx context.Context, q querier, id uuid.UUID) (*models.Session, error) {
	var sess models.Session
	err := q.QueryRow(ctx,
		`SELECT id, workout_id, status, notes, started_at, completed_at, total_volume
		 FROM sessions WHERE id = $1`, id).
		Scan(&sess.ID, &sess.WorkoutID, &sess.Status, &sess.Notes,
			&sess.StartedAt, &sess.CompletedAt, &sess.TotalVolume)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	exRows, err := q.Query(ctx,
		`SELECT id, session_id, workout_exercise_id, exercise_id, order_index, notes
		 FROM session_exercises WHERE session_id = $1 ORDER BY order_index ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying session exercises: %w", err)
	}
	defer exRows.Close()

	byID := make(map[uuid.UUID]int)
	for exRows.Next() {
		var ex models.SessionExercise
		if err := exRows.Scan(&ex.ID, &ex.SessionID, &ex.WorkoutExerciseID,
			&ex.ExerciseID, &ex.OrderIndex, &ex.Notes); err != nil {
			return nil, fmt.Errorf("scanning session exercise: %w", err)
		}
		byID[ex.ID] = len(sess.Exercises)
		sess.Exercises = append(sess.Exercises, ex)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	setRows, err := q.Query(ctx,
		`SELECT ss.id, ss.session_exercise_id, ss.workout_set_id,
		        ss.planned_reps, ss.planned_weight, ss.set_type, ss.order_index, ss.notes,
		        ss.actual_reps, ss.actual_weight, ss.completed_at
		 FROM session_sets ss
		 JOIN session_exercises se ON se.id = ss.session_exercise_id
		 WHERE se.session_id = $1
		 ORDER BY se.order_index ASC, ss.order_index ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var set models.SessionSet
		if err := setRows.Scan(&set.ID, &set.SessionExerciseID, &set.WorkoutSetID,
			&set.PlannedReps, &set.PlannedWeight, &set.SetType, &set.OrderIndex, &set.Notes,
			&set.ActualReps, &set.ActualWeight, &set.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		if idx, ok := byID[set.SessionExerciseID]; ok {
			sess.Exercises[idx].Sets = append(sess.Exercises[idx].Sets, set)
		}
	}
	return &sess, setRows.Err()
}

// ListSessions retrieves session rows (no nesting), newest started
// first, optionally filtered by exact status.
func (db *DB) ListSessions(ctx context.Context, status *models.SessionStatus) ([]models.Session, error) {
	query := `SELECT id, workout_id, status, notes, started_at, completed_at, total_volume
	          FROM sessions`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY started_at DESC, id ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		var sess models.Session
		if err := rows.Scan(&sess.ID, &sess.WorkoutID, &sess.Status, &sess.Notes,
			&sess.StartedAt, &sess.CompletedAt, &sess.TotalVolume); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, sess)
	}
	return result, rows.Err()
}

// FinishSession transitions in_progress -> status via compare-and-set
// and, on completion, runs PR detection inside the same transaction.
// The status CAS means two concurrent complete/cancel calls cannot
// both win; the loser sees the terminal state and gets ErrInvalidState.
func (db *DB) FinishSession(ctx context.Context, id uuid.UUID, status models.SessionStatus, at time.Time, detect session.DetectFunc) (*models.Session, []models.PersonalRecord, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE sessions SET status = $2, completed_at = $3
		 WHERE id = $1 AND status = 'in_progress'`,
		id, status, at)
	if err != nil {
		return nil, nil, fmt.Errorf("updating session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM sessions WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, session.ErrSessionNotFound
		}
		if err != nil {
			return nil, nil, fmt.Errorf("querying session status: %w", err)
		}
		return nil, nil, session.ErrInvalidState
	}

	sess, err := loadSession(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	var newRecords []models.PersonalRecord
	if status == models.StatusCompleted {
		sess.TotalVolume = sess.LoggedVolume()
		if _, err := tx.Exec(ctx,
			`UPDATE sessions SET total_volume = $2 WHERE id = $1`, id, sess.TotalVolume); err != nil {
			return nil, nil, fmt.Errorf("updating total volume: %w", err)
		}

		if detect != nil {
			bests, err := lockAndLoadBests(ctx, tx, sess)
			if err != nil {
				return nil, nil, err
			}
			newRecords = detect(sess, bests)
			for _, r := range newRecords {
				_, err := tx.Exec(ctx,
					`INSERT INTO personal_records
					 (id, exercise_id, session_id, session_set_id, pr_type, achieved_value, achieved_at)
					 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
					r.ID, r.ExerciseID, r.SessionID, r.SessionSetID, r.PRType, r.AchievedValue, r.AchievedAt)
				if err != nil {
					return nil, nil, fmt.Errorf("inserting personal record: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("committing session transition: %w", err)
	}
	return sess, newRecords, nil
}

// lockAndLoadBests takes per-(exercise, pr_type) advisory locks in
// sorted key order, then reads the prior best value per slot. The
// locks serialize the read-best/insert-improved sequence against other
// sessions completing the same exercise concurrently; sorting avoids
// deadlocks between them.
func lockAndLoadBests(ctx context.Context, tx pgx.Tx, sess *models.Session) (map[records.Key]float64, error) {
	seen := make(map[uuid.UUID]bool)
	var keys []string
	var exerciseIDs []uuid.UUID
	for _, ex := range sess.Exercises {
		if seen[ex.ExerciseID] {
			continue
		}
		seen[ex.ExerciseID] = true
		exerciseIDs = append(exerciseIDs, ex.ExerciseID)
		for _, t := range models.PRTypes {
			keys = append(keys, ex.ExerciseID.String()+":"+string(t))
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return nil, fmt.Errorf("taking record lock: %w", err)
		}
	}

	bests := make(map[records.Key]float64)
	if len(exerciseIDs) == 0 {
		return bests, nil
	}

	rows, err := tx.Query(ctx,
		`SELECT exercise_id, pr_type, MAX(achieved_value)
		 FROM personal_records
		 WHERE exercise_id = ANY($1)
		 GROUP BY exercise_id, pr_type`,
		exerciseIDs)
	if err != nil {
		return nil, fmt.Errorf("querying prior bests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k records.Key
		var value float64
		if err := rows.Scan(&k.ExerciseID, &k.Type, &value); err != nil {
			return nil, fmt.Errorf("scanning prior best: %w", err)
		}
		bests[k] = value
	}
	return bests, rows.Err()
}
