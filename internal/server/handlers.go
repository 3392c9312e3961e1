package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type startSessionRequest struct {
	WorkoutID string `json:"workout_id"`
	Notes     string `json:"notes"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON: "+err.Error())
		return
	}
	workoutID, err := uuid.Parse(req.WorkoutID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid workout_id")
		return
	}

	sess, err := s.core.Start(r.Context(), workoutID, req.Notes)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeData(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	var status *models.SessionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := models.ParseSessionStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		status = &parsed
	}

	sessions, err := s.core.ListSessions(r.Context(), status)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeData(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "session id")
	if !ok {
		return
	}
	sess, err := s.core.GetSession(r.Context(), id)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, sess)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "session id")
	if !ok {
		return
	}
	sess, _, err := s.core.Complete(r.Context(), id)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, sess)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "session id")
	if !ok {
		return
	}
	sess, err := s.core.Cancel(r.Context(), id)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, sess)
}

type recordSetRequest struct {
	ActualReps   *int     `json:"actual_reps"`
	ActualWeight *float64 `json:"actual_weight"`
	Notes        string   `json:"notes"`
}

func (s *Server) handleRecordSet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseID(w, chi.URLParam(r, "id"), "session id")
	if !ok {
		return
	}
	setID, ok := parseID(w, chi.URLParam(r, "set_id"), "set id")
	if !ok {
		return
	}

	var req recordSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid JSON: "+err.Error())
		return
	}

	set, err := s.core.RecordSet(r.Context(), sessionID, setID, req.ActualReps, req.ActualWeight, req.Notes)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, set)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("session_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "session_id parameter required")
		return
	}
	sessionID, ok := parseID(w, raw, "session_id")
	if !ok {
		return
	}

	prs, err := s.core.ListRecords(r.Context(), sessionID)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if prs == nil {
		prs = []models.PersonalRecord{}
	}
	writeData(w, http.StatusOK, prs)
}

func (s *Server) handleCurrentRecords(w http.ResponseWriter, r *http.Request) {
	prs, err := s.core.CurrentRecords(r.Context())
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if prs == nil {
		prs = []models.PersonalRecord{}
	}
	writeData(w, http.StatusOK, prs)
}

func (s *Server) handleRecordSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.core.RecordSummary(r.Context())
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.core.ListWorkouts(r.Context())
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeData(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"), "workout id")
	if !ok {
		return
	}
	workout, err := s.core.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, workout)
}

// writeCoreError maps session error kinds to HTTP statuses: not-found
// to 404, state/CAS conflicts to 409, validation to 400.
func (s *Server) writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrWorkoutNotFound):
		writeError(w, http.StatusNotFound, "workout_not_found", err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, session.ErrSetNotFound):
		writeError(w, http.StatusNotFound, "set_not_found", err.Error())
	case errors.Is(err, session.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, session.ErrSetAlreadyCompleted):
		writeError(w, http.StatusConflict, "set_already_completed", err.Error())
	case errors.Is(err, session.ErrConflict):
		writeError(w, http.StatusConflict, "concurrency_conflict", err.Error())
	case errors.Is(err, session.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		s.log.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func parseID(w http.ResponseWriter, raw, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid "+what)
		return uuid.UUID{}, false
	}
	return id, true
}

func writeData(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"kind": kind, "message": message},
	})
}
