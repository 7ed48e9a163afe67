// ABOUTME: HTTP API server wiring routes to storage, ingestion and stats.
// ABOUTME: Permission model is owner-or-staff, enforced per handler.
package server

import (
	"net/http"

	"github.com/velolab/velo/internal/auth"
	"github.com/velolab/velo/internal/ingest"
	"github.com/velolab/velo/internal/stats"
	"github.com/velolab/velo/internal/storage"
)

// Server holds the API's collaborators and routes.
type Server struct {
	repo       storage.Repository
	pipeline   *ingest.Pipeline
	stats      *stats.Service
	tokens     *auth.Tokens
	bcryptCost int
	mux        *http.ServeMux
}

// New creates a Server with all routes registered.
func New(repo storage.Repository, pipeline *ingest.Pipeline, statsSvc *stats.Service, tokens *auth.Tokens, bcryptCost int) *Server {
	s := &Server{
		repo:       repo,
		pipeline:   pipeline,
		stats:      statsSvc,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	handle := func(pattern string, h http.HandlerFunc) {
		s.mux.HandleFunc(pattern, s.instrument(pattern, h))
	}

	// auth
	handle("POST /register", s.handleRegister)
	handle("POST /login", s.handleLogin)
	handle("GET /me", s.withAuth(s.handleMe))

	// athletes
	handle("POST /athletes", s.withStaff(s.handleCreateAthlete))
	handle("GET /athletes", s.withAuth(s.handleListAthletes))
	handle("GET /athletes/{id}", s.withAuth(s.handleGetAthlete))
	handle("PUT /athletes/{id}", s.withAuth(s.handleUpdateAthlete))
	handle("DELETE /athletes/{id}", s.withStaff(s.handleDeleteAthlete))
	handle("GET /athletes/{id}/sessions", s.withAuth(s.handleAthleteSessions))

	// sessions
	handle("POST /sessions", s.withAuth(s.handleCreateSession))
	handle("GET /sessions", s.withAuth(s.handleListSessions))
	handle("GET /sessions/{id}", s.withAuth(s.handleGetSession))
	handle("PUT /sessions/{id}", s.withAuth(s.handleUpdateSession))
	handle("DELETE /sessions/{id}", s.withAuth(s.handleDeleteSession))
	handle("POST /sessions/{id}/calculate-metrics", s.withAuth(s.handleCalculateMetrics))

	// samples
	handle("POST /sessions/{id}/samples", s.withAuth(s.handleAddSample))
	handle("GET /sessions/{id}/samples", s.withAuth(s.handleListSamples))
	handle("POST /sessions/{id}/upload-csv", s.withAuth(s.handleUploadCSV))
	handle("GET /samples/{id}", s.withAuth(s.handleGetSample))
	handle("DELETE /samples/{id}", s.withAuth(s.handleDeleteSample))

	// stats
	handle("GET /stats/overview", s.withAuth(s.handleStatsOverview))
	handle("GET /stats/top", s.withAuth(s.handleStatsTop))
	handle("GET /stats/athletes/{id}/progress", s.withAuth(s.handleStatsProgress))

	handle("GET /healthz", s.handleHealthz)
}

// Handler returns the root handler for the API.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
