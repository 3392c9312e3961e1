package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListSessions(ctx context.Context, status *models.SessionStatus) ([]models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListRecords(ctx context.Context, sessionID uuid.UUID) ([]models.PersonalRecord, error)
	CurrentRecords(ctx context.Context) ([]models.PersonalRecord, error)
	RecordSummary(ctx context.Context) (*session.RecordSummary, error)
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
