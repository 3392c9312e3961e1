package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training server. Query workout sessions, logged sets, and personal records (PRs). Sessions are executions of workout templates; PRs track best-ever max_weight, max_reps, max_single_set, and max_volume per exercise."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetCurrentRecords, Handler: h.getCurrentRecords},
		server.ServerTool{Tool: toolGetRecordSummary, Handler: h.getRecordSummary},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentRecords, Handler: h.currentRecordsResource},
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessionsResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentRecords = mcp.NewResource(
	"liftlog://current_records",
	"Current Personal Records",
	mcp.WithResourceDescription("The standing best personal record for every (exercise, pr_type) pair"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"liftlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Workout sessions started in the last 14 days, newest first"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) currentRecordsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	prs, err := h.ds.CurrentRecords(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, prs)
}

func (h *handlers) recentSessionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.ListSessions(ctx, nil)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, -14)
	var recent []models.Session
	for _, s := range sessions {
		if s.StartedAt.After(cutoff) {
			recent = append(recent, s)
		}
	}
	return jsonResource(req.Params.URI, recent)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
