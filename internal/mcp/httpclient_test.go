package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

// apiStub serves canned {"data": ...} responses keyed by path.
func apiStub(t *testing.T, responses map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"kind": "session_not_found", "message": "nope"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": v})
	}))
}

func TestHTTPClientListSessions(t *testing.T) {
	want := []models.Session{
		{ID: uuid.New(), Status: models.StatusCompleted, TotalVolume: 1300},
		{ID: uuid.New(), Status: models.StatusInProgress},
	}
	srv := apiStub(t, map[string]any{"/api/v1/sessions": want})
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	got, err := client.ListSessions(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(got) != 2 || got[0].ID != want[0].ID || got[0].TotalVolume != 1300 {
		t.Errorf("sessions = %+v", got)
	}
}

func TestHTTPClientStatusFilter(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("status")
		json.NewEncoder(w).Encode(map[string]any{"data": []models.Session{}})
	}))
	defer srv.Close()

	status := models.StatusCompleted
	client := NewHTTPClient(srv.URL)
	if _, err := client.ListSessions(context.Background(), &status); err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if gotQuery != "completed" {
		t.Errorf("status query = %q, want completed", gotQuery)
	}
}

func TestHTTPClientGetSession(t *testing.T) {
	id := uuid.New()
	srv := apiStub(t, map[string]any{
		"/api/v1/sessions/" + id.String(): models.Session{ID: id, Status: models.StatusInProgress},
	})
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	got, err := client.GetSession(context.Background(), id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.ID != id {
		t.Errorf("session id = %v, want %v", got.ID, id)
	}

	if _, err := client.GetSession(context.Background(), uuid.New()); err == nil {
		t.Error("GetSession for unknown id succeeded")
	}
}

func TestHTTPClientRecordSummary(t *testing.T) {
	srv := apiStub(t, map[string]any{
		"/api/v1/prs/summary": session.RecordSummary{
			TotalRecords: 6,
			ByType:       map[models.PRType]int{models.PRMaxWeight: 2},
		},
	})
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	got, err := client.RecordSummary(context.Background())
	if err != nil {
		t.Fatalf("RecordSummary: %v", err)
	}
	if got.TotalRecords != 6 || got.ByType[models.PRMaxWeight] != 2 {
		t.Errorf("summary = %+v", got)
	}
}

func TestHTTPClientTrimsTrailingSlash(t *testing.T) {
	srv := apiStub(t, map[string]any{"/api/v1/prs/current": []models.PersonalRecord{}})
	defer srv.Close()

	client := NewHTTPClient(srv.URL + "/")
	if _, err := client.CurrentRecords(context.Background()); err != nil {
		t.Fatalf("CurrentRecords: %v", err)
	}
}
