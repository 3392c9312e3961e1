// Package archive pulls completed sessions and personal records from a
// LiftLog server and appends them to a local SQLite archive, so a
// training history survives independently of the server.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Client fetches session data from the LiftLog server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the LiftLog server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// get fetches a path and unwraps the {"data": ...} envelope into out.
func (c *Client) get(path string, out any) error {
	resp, err := c.httpClient.Get(c.serverURL + path)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request %s failed (status %d): %s", path, resp.StatusCode, body)
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return json.Unmarshal(envelope.Data, out)
}

// FetchCompletedSessions retrieves completed session rows (no nesting).
func (c *Client) FetchCompletedSessions() ([]models.Session, error) {
	var sessions []models.Session
	if err := c.get("/api/v1/sessions?status=completed", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// FetchSession retrieves one session with nested exercises and sets.
func (c *Client) FetchSession(id string) (*models.Session, error) {
	var sess models.Session
	if err := c.get("/api/v1/sessions/"+id, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// FetchRecords retrieves the personal records achieved by one session.
func (c *Client) FetchRecords(sessionID string) ([]models.PersonalRecord, error) {
	var prs []models.PersonalRecord
	if err := c.get("/api/v1/prs?session_id="+sessionID, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}
