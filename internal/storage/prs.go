package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, exercise_id, session_id, session_set_id, pr_type, achieved_value, achieved_at`

// ListRecords retrieves all PRs achieved by one session. Provenance
// filter: rows stay listed even after a later session supersedes them.
func (db *DB) ListRecords(ctx context.Context, sessionID uuid.UUID) ([]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+recordColumns+`
		 FROM personal_records
		 WHERE session_id = $1
		 ORDER BY achieved_at DESC, exercise_id ASC, pr_type ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// CurrentRecords retrieves the standing best per (exercise, pr_type):
// greatest achieved value, earliest achievement on ties.
func (db *DB) CurrentRecords(ctx context.Context) ([]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (exercise_id, pr_type) `+recordColumns+`
		 FROM personal_records
		 ORDER BY exercise_id ASC, pr_type ASC, achieved_value DESC, achieved_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying current records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// RecordSummary aggregates the ledger: totals, per-type counts, and
// the ten most recent records.
func (db *DB) RecordSummary(ctx context.Context) (*session.RecordSummary, error) {
	summary := &session.RecordSummary{ByType: make(map[models.PRType]int)}

	typeRows, err := db.Pool.Query(ctx,
		`SELECT pr_type, COUNT(*)::int FROM personal_records GROUP BY pr_type`)
	if err != nil {
		return nil, fmt.Errorf("querying record counts: %w", err)
	}
	defer typeRows.Close()

	for typeRows.Next() {
		var t models.PRType
		var n int
		if err := typeRows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scanning record count: %w", err)
		}
		summary.ByType[t] = n
		summary.TotalRecords += n
	}
	if err := typeRows.Err(); err != nil {
		return nil, err
	}

	recentRows, err := db.Pool.Query(ctx,
		`SELECT `+recordColumns+`
		 FROM personal_records
		 ORDER BY achieved_at DESC, exercise_id ASC, pr_type ASC
		 LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("querying recent records: %w", err)
	}
	defer recentRows.Close()

	summary.Recent, err = scanRecords(recentRows)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func scanRecords(rows pgx.Rows) ([]models.PersonalRecord, error) {
	var result []models.PersonalRecord
	for rows.Next() {
		var r models.PersonalRecord
		if err := rows.Scan(&r.ID, &r.ExerciseID, &r.SessionID, &r.SessionSetID,
			&r.PRType, &r.AchievedValue, &r.AchievedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
