package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetWorkout retrieves a workout template with its exercises and
// planned sets. The session core treats the catalog as read-only.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, notes FROM workouts WHERE id = $1`, id).
		Scan(&w.ID, &w.Name, &w.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT we.id, we.workout_id, we.exercise_id, we.order_index, we.notes,
		        ws.id, ws.workout_exercise_id, ws.planned_reps, ws.planned_weight,
		        ws.set_type, ws.order_index, ws.notes
		 FROM workout_exercises we
		 LEFT JOIN workout_sets ws ON ws.workout_exercise_id = we.id
		 WHERE we.workout_id = $1
		 ORDER BY we.order_index ASC, ws.order_index ASC`,
		id)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var we models.WorkoutExercise
		var setID, setExerciseID *uuid.UUID
		var plannedReps, setOrder *int
		var plannedWeight *float64
		var setType, setNotes *string
		if err := rows.Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &we.OrderIndex, &we.Notes,
			&setID, &setExerciseID, &plannedReps, &plannedWeight, &setType, &setOrder, &setNotes); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}

		idx, ok := byID[we.ID]
		if !ok {
			idx = len(w.Exercises)
			byID[we.ID] = idx
			w.Exercises = append(w.Exercises, we)
		}
		if setID != nil {
			w.Exercises[idx].Sets = append(w.Exercises[idx].Sets, models.WorkoutSet{
				ID:                *setID,
				WorkoutExerciseID: *setExerciseID,
				PlannedReps:       *plannedReps,
				PlannedWeight:     *plannedWeight,
				SetType:           models.SetType(*setType),
				OrderIndex:        *setOrder,
				Notes:             deref(setNotes),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWorkouts retrieves workout templates without nested plan data.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, notes FROM workouts ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
