package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List workout sessions, newest first. Optionally filter by exact status."),
	mcp.WithString("status", mcp.Description("Session status filter"), mcp.Enum("in_progress", "completed", "cancelled")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get one workout session with its exercises and sets, including planned values and logged actual performance."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("List the personal records achieved by one session. Records stay attributed to the session that achieved them even if later superseded."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetCurrentRecords = mcp.NewTool("get_current_records",
	mcp.WithDescription("Get the standing best personal record for every (exercise, pr_type) pair."),
)

var toolGetRecordSummary = mcp.NewTool("get_record_summary",
	mcp.WithDescription("Get PR ledger totals: overall count, counts per pr_type, and the ten most recent records."),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List workout templates from the catalog."),
)

// --- Tool handlers ---

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status *models.SessionStatus
	if raw := req.GetString("status", ""); raw != "" {
		parsed, err := models.ParseSessionStatus(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		status = &parsed
	}

	sessions, err := h.ds.ListSessions(ctx, status)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(sessions)
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := uuid.Parse(req.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid session_id"), nil
	}

	sess, err := h.ds.GetSession(ctx, id)
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(sess)
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := uuid.Parse(req.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid session_id"), nil
	}

	prs, err := h.ds.ListRecords(ctx, id)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(prs)
}

func (h *handlers) getCurrentRecords(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prs, err := h.ds.CurrentRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_current_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(prs)
}

func (h *handlers) getRecordSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.ds.RecordSummary(ctx)
	if err != nil {
		h.log.Error("mcp get_record_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(summary)
}

func (h *handlers) listWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(workouts)
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
