package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/models"
	_ "modernc.org/sqlite"
)

// Archive is the local SQLite database holding exported sessions.
// Sessions already present are skipped, so repeated runs only append
// what is new.
type Archive struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at dir/archive.db.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "archive.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		workout_id   TEXT NOT NULL,
		status       TEXT NOT NULL,
		notes        TEXT,
		started_at   TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		total_volume REAL NOT NULL,
		archived_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS session_sets (
		id             TEXT PRIMARY KEY,
		session_id     TEXT NOT NULL,
		exercise_id    TEXT NOT NULL,
		set_type       TEXT NOT NULL,
		order_index    INTEGER NOT NULL,
		planned_reps   INTEGER NOT NULL,
		planned_weight REAL NOT NULL,
		actual_reps    INTEGER,
		actual_weight  REAL,
		completed_at   TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS personal_records (
		id             TEXT PRIMARY KEY,
		exercise_id    TEXT NOT NULL,
		session_id     TEXT NOT NULL,
		pr_type        TEXT NOT NULL,
		achieved_value REAL NOT NULL,
		achieved_at    TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive tables: %w", err)
	}

	return &Archive{db: db}, nil
}

// Has checks whether a session is already archived.
func (a *Archive) Has(sessionID string) (bool, error) {
	var count int
	err := a.db.QueryRow(
		`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Store writes one session, its sets, and its PRs. INSERT OR IGNORE
// keeps re-runs idempotent.
func (a *Archive) Store(sess *models.Session, prs []models.PersonalRecord) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR IGNORE INTO sessions (id, workout_id, status, notes, started_at, completed_at, total_volume)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID.String(), sess.WorkoutID.String(), string(sess.Status), sess.Notes,
		sess.StartedAt, sess.CompletedAt, sess.TotalVolume)
	if err != nil {
		return fmt.Errorf("archiving session: %w", err)
	}

	for _, ex := range sess.Exercises {
		for _, set := range ex.Sets {
			_, err = tx.Exec(
				`INSERT OR IGNORE INTO session_sets
				 (id, session_id, exercise_id, set_type, order_index, planned_reps, planned_weight, actual_reps, actual_weight, completed_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				set.ID.String(), sess.ID.String(), ex.ExerciseID.String(), string(set.SetType),
				set.OrderIndex, set.PlannedReps, set.PlannedWeight,
				set.ActualReps, set.ActualWeight, set.CompletedAt)
			if err != nil {
				return fmt.Errorf("archiving set: %w", err)
			}
		}
	}

	for _, pr := range prs {
		_, err = tx.Exec(
			`INSERT OR IGNORE INTO personal_records
			 (id, exercise_id, session_id, pr_type, achieved_value, achieved_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			pr.ID.String(), pr.ExerciseID.String(), pr.SessionID.String(),
			string(pr.PRType), pr.AchievedValue, pr.AchievedAt)
		if err != nil {
			return fmt.Errorf("archiving record: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the archive database.
func (a *Archive) Close() error {
	return a.db.Close()
}
