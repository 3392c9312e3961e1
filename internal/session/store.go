package session

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
	"github.com/google/uuid"
)

// DetectFunc computes new personal records for a session that just
// completed, given the prior best value per ledger slot. The store
// calls it inside the completion transaction and persists the result
// atomically with the status transition.
type DetectFunc func(sess *models.Session, bests map[records.Key]float64) []models.PersonalRecord

// RecordSummary aggregates the PR ledger for reporting surfaces.
type RecordSummary struct {
	TotalRecords int                     `json:"total_records"`
	ByType       map[models.PRType]int   `json:"by_type"`
	Recent       []models.PersonalRecord `json:"recent"`
}

// Store is the persistence boundary for the session core. Implemented
// by storage.DB (Postgres) and by MemStore (dev mode, tests). Every
// mutating method is a single atomic unit; the compare-and-set
// semantics below are what make concurrent transitions safe.
type Store interface {
	// Catalog reads. GetWorkout returns the template with nested
	// exercises and sets, or ErrWorkoutNotFound.
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error)
	ListWorkouts(ctx context.Context) ([]models.Workout, error)

	// CreateSession persists a session snapshot (session, exercises,
	// sets) atomically.
	CreateSession(ctx context.Context, sess *models.Session) error

	// GetSession returns a session with nested exercises and sets, or
	// ErrSessionNotFound.
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)

	// ListSessions returns session rows (no nesting), newest started
	// first, optionally filtered by exact status.
	ListSessions(ctx context.Context, status *models.SessionStatus) ([]models.Session, error)

	// RecordSet writes actual performance into a set exactly once.
	// Fails with ErrSessionNotFound, ErrSetNotFound (including a set
	// owned by a different session), ErrInvalidState, or
	// ErrSetAlreadyCompleted. The write is guarded against the set's
	// current actual-field state so two concurrent completions of the
	// same set cannot both succeed.
	RecordSet(ctx context.Context, sessionID, setID uuid.UUID, reps int, weight float64, notes string, at time.Time) (*models.SessionSet, error)

	// FinishSession transitions in_progress -> status via compare-and-
	// set, stamps completed_at, and, when detect is non-nil, runs PR
	// detection and persists the new records in the same transaction.
	// Any failure rolls back the whole transition.
	FinishSession(ctx context.Context, id uuid.UUID, status models.SessionStatus, at time.Time, detect DetectFunc) (*models.Session, []models.PersonalRecord, error)

	// ListRecords returns PR rows achieved by the given session
	// (provenance filter; superseded records stay listed).
	ListRecords(ctx context.Context, sessionID uuid.UUID) ([]models.PersonalRecord, error)

	// CurrentRecords returns the standing best per (exercise, pr_type):
	// greatest achieved_value, earliest achieved_at on ties.
	CurrentRecords(ctx context.Context) ([]models.PersonalRecord, error)

	// RecordSummary aggregates the ledger.
	RecordSummary(ctx context.Context) (*RecordSummary, error)
}
