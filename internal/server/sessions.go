// ABOUTME: Test session handlers: CRUD plus on-demand metric recomputation.
// ABOUTME: Access always goes through the owning athlete's user account.
package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
	"github.com/velolab/velo/internal/physio"
	"github.com/velolab/velo/internal/storage"
	"github.com/velolab/velo/internal/telemetry"
)

type sessionCreateRequest struct {
	AthleteID uuid.UUID `json:"athlete_id"`
	TestType  string    `json:"test_type"`
	TestDate  *string   `json:"test_date"`
	Weight    *float64  `json:"weight"`
	Height    *float64  `json:"height"`
	Notes     *string   `json:"notes"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req sessionCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !models.IsValidTestType(req.TestType) {
		writeError(w, http.StatusBadRequest, "invalid test_type")
		return
	}

	athlete, err := s.repo.GetAthlete(req.AthleteID)
	if err != nil {
		writeStorageError(w, err, "athlete not found")
		return
	}
	if !user.CanAccess(athlete.UserID) {
		writeError(w, http.StatusForbidden, "not enough permissions")
		return
	}

	session := models.NewSession(athlete.ID, models.TestType(req.TestType))
	if req.TestDate != nil {
		date, err := parseDate(*req.TestDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid test_date")
			return
		}
		session.WithDate(date)
	}
	session.Weight = req.Weight
	session.Height = req.Height
	session.Notes = req.Notes

	if err := s.repo.CreateSession(session); err != nil {
		writeStorageError(w, err, "athlete not found")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request, user *models.User) {
	f := storage.SessionFilter{
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}
	if !user.IsStaff {
		f.OwnerID = &user.ID
	}
	if tt := r.URL.Query().Get("test_type"); tt != "" {
		if !models.IsValidTestType(tt) {
			writeError(w, http.StatusBadRequest, "invalid test_type")
			return
		}
		typ := models.TestType(tt)
		f.Type = &typ
	}
	if a := r.URL.Query().Get("athlete_id"); a != "" {
		athleteID, err := uuid.Parse(a)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid athlete_id")
			return
		}
		f.AthleteID = &athleteID
	}

	sessions, err := s.repo.ListSessions(f)
	if err != nil {
		writeStorageError(w, err, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, ok := s.sessionForUser(w, r, user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type sessionUpdateRequest struct {
	TestType *string  `json:"test_type"`
	TestDate *string  `json:"test_date"`
	Weight   *float64 `json:"weight"`
	Height   *float64 `json:"height"`
	Notes    *string  `json:"notes"`
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, ok := s.sessionForUser(w, r, user)
	if !ok {
		return
	}

	var req sessionUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.TestType != nil {
		if !models.IsValidTestType(*req.TestType) {
			writeError(w, http.StatusBadRequest, "invalid test_type")
			return
		}
		session.Type = models.TestType(*req.TestType)
	}
	if req.TestDate != nil {
		date, err := parseDate(*req.TestDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid test_date")
			return
		}
		session.Date = date
	}
	if req.Weight != nil {
		session.Weight = req.Weight
	}
	if req.Height != nil {
		session.Height = req.Height
	}
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	if err := s.repo.UpdateSession(session); err != nil {
		writeStorageError(w, err, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, ok := s.sessionForUser(w, r, user)
	if !ok {
		return
	}
	if err := s.repo.DeleteSession(session.ID); err != nil {
		writeStorageError(w, err, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCalculateMetrics(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, ok := s.sessionForUser(w, r, user)
	if !ok {
		return
	}

	samples, err := s.repo.ListSamples(session.ID, 0, 0)
	if err != nil {
		writeStorageError(w, err, "session not found")
		return
	}

	metrics := physio.Compute(samples, session.Weight)
	if err := s.repo.UpdateSessionMetrics(session.ID, metrics); err != nil {
		writeStorageError(w, err, "session not found")
		return
	}
	telemetry.MetricsRecomputed.Inc()

	session.Metrics = metrics
	writeJSON(w, http.StatusOK, session)
}

// sessionForUser loads the session in the path and enforces owner-or-staff
// access via the owning athlete.
func (s *Server) sessionForUser(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Session, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	session, err := s.repo.GetSession(id)
	if err != nil {
		writeStorageError(w, err, "session not found")
		return nil, false
	}
	athlete, err := s.repo.GetAthlete(session.AthleteID)
	if err != nil {
		writeStorageError(w, err, "athlete not found")
		return nil, false
	}
	if !user.CanAccess(athlete.UserID) {
		writeError(w, http.StatusForbidden, "not enough permissions")
		return nil, false
	}
	return session, true
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
