package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	core   *session.Manager
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the mutating routes open (dev mode).
func New(core *session.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		core:   core,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Mutating session endpoints (API key required unless dev mode)
		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Post("/sessions", s.handleStartSession)
			r.Post("/sessions/{id}/complete", s.handleCompleteSession)
			r.Post("/sessions/{id}/cancel", s.handleCancelSession)
			r.Put("/sessions/{id}/set/{set_id}", s.handleRecordSet)
		})

		// Read endpoints
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/prs", s.handleListRecords)
		r.Get("/prs/current", s.handleCurrentRecords)
		r.Get("/prs/summary", s.handleRecordSummary)
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
	})
}
