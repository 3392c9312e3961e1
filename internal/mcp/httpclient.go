package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// get fetches a path and unwraps the API's {"data": ...} envelope into out.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("httpclient: %s: decode envelope: %w", path, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("httpclient: %s: decode payload: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, status *models.SessionStatus) ([]models.Session, error) {
	params := url.Values{}
	if status != nil {
		params.Set("status", string(*status))
	}
	var out []models.Session
	if err := c.get(ctx, "/api/v1/sessions", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var out models.Session
	if err := c.get(ctx, "/api/v1/sessions/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListRecords(ctx context.Context, sessionID uuid.UUID) ([]models.PersonalRecord, error) {
	params := url.Values{"session_id": {sessionID.String()}}
	var out []models.PersonalRecord
	if err := c.get(ctx, "/api/v1/prs", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CurrentRecords(ctx context.Context) ([]models.PersonalRecord, error) {
	var out []models.PersonalRecord
	if err := c.get(ctx, "/api/v1/prs/current", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) RecordSummary(ctx context.Context) (*session.RecordSummary, error) {
	var out session.RecordSummary
	if err := c.get(ctx, "/api/v1/prs/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	var out []models.Workout
	if err := c.get(ctx, "/api/v1/workouts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
