package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

func archivedSession() (*models.Session, []models.PersonalRecord) {
	reps, weight := 8, 60.0
	now := time.Now().UTC()
	done := now.Add(time.Hour)
	exercise := uuid.New()
	sess := &models.Session{
		ID:          uuid.New(),
		WorkoutID:   uuid.New(),
		Status:      models.StatusCompleted,
		StartedAt:   now,
		CompletedAt: &done,
		TotalVolume: 480,
		Exercises: []models.SessionExercise{
			{
				ID: uuid.New(), ExerciseID: exercise,
				Sets: []models.SessionSet{
					{
						ID: uuid.New(), PlannedReps: 8, PlannedWeight: 60,
						SetType: models.SetNormal,
						ActualReps: &reps, ActualWeight: &weight, CompletedAt: &done,
					},
					{ID: uuid.New(), PlannedReps: 8, PlannedWeight: 60, SetType: models.SetNormal},
				},
			},
		},
	}
	prs := []models.PersonalRecord{
		{
			ID: uuid.New(), ExerciseID: exercise, SessionID: sess.ID,
			PRType: models.PRMaxWeight, AchievedValue: 60, AchievedAt: done,
		},
	}
	return sess, prs
}

func TestOpenCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "archive")
	arch, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer arch.Close()

	have, err := arch.Has(uuid.NewString())
	if err != nil {
		t.Fatalf("Has on empty archive: %v", err)
	}
	if have {
		t.Error("empty archive reports a session")
	}
}

func TestStoreAndHas(t *testing.T) {
	arch, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer arch.Close()

	sess, prs := archivedSession()
	if err := arch.Store(sess, prs); err != nil {
		t.Fatalf("Store: %v", err)
	}

	have, err := arch.Has(sess.ID.String())
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !have {
		t.Error("stored session not found")
	}

	// Re-storing the same session must not fail.
	if err := arch.Store(sess, prs); err != nil {
		t.Fatalf("idempotent Store: %v", err)
	}

	var count int
	if err := arch.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("sessions = %d, want 1 after duplicate store", count)
	}
	if err := arch.db.QueryRow(`SELECT COUNT(*) FROM session_sets WHERE session_id = ?`, sess.ID.String()).Scan(&count); err != nil {
		t.Fatalf("count sets: %v", err)
	}
	if count != 2 {
		t.Errorf("session_sets = %d, want 2", count)
	}
	if err := arch.db.QueryRow(`SELECT COUNT(*) FROM personal_records WHERE session_id = ?`, sess.ID.String()).Scan(&count); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 1 {
		t.Errorf("personal_records = %d, want 1", count)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	sess, prs := archivedSession()

	arch, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := arch.Store(sess, prs); err != nil {
		t.Fatalf("Store: %v", err)
	}
	arch.Close()

	arch, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer arch.Close()

	have, err := arch.Has(sess.ID.String())
	if err != nil {
		t.Fatalf("Has after reopen: %v", err)
	}
	if !have {
		t.Error("session lost across reopen")
	}
}
