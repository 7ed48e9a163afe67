// ABOUTME: Athlete profile handlers.
// ABOUTME: Create and delete are staff only; reads are owner-or-staff.
package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
	"github.com/velolab/velo/internal/storage"
)

type athleteCreateRequest struct {
	UserID    *uuid.UUID `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Age       *int       `json:"age"`
	Weight    *float64   `json:"weight"`
	Height    *float64   `json:"height"`
	VO2Max    *float64   `json:"vo2max"`
}

func (s *Server) handleCreateAthlete(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req athleteCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "first_name and last_name are required")
		return
	}

	ownerID := user.ID
	if req.UserID != nil {
		ownerID = *req.UserID
	}

	athlete := models.NewAthlete(ownerID, req.FirstName, req.LastName)
	athlete.Age = req.Age
	athlete.Weight = req.Weight
	athlete.Height = req.Height
	athlete.VO2Max = req.VO2Max

	if err := s.repo.CreateAthlete(athlete); err != nil {
		writeStorageError(w, err, "owner account not found")
		return
	}
	writeJSON(w, http.StatusCreated, athlete)
}

func (s *Server) handleListAthletes(w http.ResponseWriter, r *http.Request, user *models.User) {
	f := storage.AthleteFilter{
		Name:   r.URL.Query().Get("name"),
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}
	if !user.IsStaff {
		f.UserID = &user.ID
	}

	athletes, err := s.repo.ListAthletes(f)
	if err != nil {
		writeStorageError(w, err, "athlete not found")
		return
	}
	writeJSON(w, http.StatusOK, athletes)
}

func (s *Server) handleGetAthlete(w http.ResponseWriter, r *http.Request, user *models.User) {
	athlete, ok := s.athleteForUser(w, r, user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, athlete)
}

type athleteUpdateRequest struct {
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Age       *int     `json:"age"`
	Weight    *float64 `json:"weight"`
	Height    *float64 `json:"height"`
	VO2Max    *float64 `json:"vo2max"`
}

func (s *Server) handleUpdateAthlete(w http.ResponseWriter, r *http.Request, user *models.User) {
	athlete, ok := s.athleteForUser(w, r, user)
	if !ok {
		return
	}

	var req athleteUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.FirstName != nil {
		athlete.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		athlete.LastName = *req.LastName
	}
	if req.Age != nil {
		athlete.Age = req.Age
	}
	if req.Weight != nil {
		athlete.Weight = req.Weight
	}
	if req.Height != nil {
		athlete.Height = req.Height
	}
	if req.VO2Max != nil {
		athlete.VO2Max = req.VO2Max
	}

	if err := s.repo.UpdateAthlete(athlete); err != nil {
		writeStorageError(w, err, "athlete not found")
		return
	}
	writeJSON(w, http.StatusOK, athlete)
}

func (s *Server) handleDeleteAthlete(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteAthlete(id); err != nil {
		writeStorageError(w, err, "athlete not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAthleteSessions(w http.ResponseWriter, r *http.Request, user *models.User) {
	athlete, ok := s.athleteForUser(w, r, user)
	if !ok {
		return
	}

	f := storage.SessionFilter{
		AthleteID: &athlete.ID,
		Limit:     queryInt(r, "limit", 100),
		Offset:    queryInt(r, "offset", 0),
	}
	if tt := r.URL.Query().Get("test_type"); tt != "" {
		if !models.IsValidTestType(tt) {
			writeError(w, http.StatusBadRequest, "invalid test_type")
			return
		}
		typ := models.TestType(tt)
		f.Type = &typ
	}

	sessions, err := s.repo.ListSessions(f)
	if err != nil {
		writeStorageError(w, err, "athlete not found")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// athleteForUser loads the athlete in the path and enforces owner-or-staff
// access. On failure the response is already written.
func (s *Server) athleteForUser(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Athlete, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	athlete, err := s.repo.GetAthlete(id)
	if err != nil {
		writeStorageError(w, err, "athlete not found")
		return nil, false
	}
	if !user.CanAccess(athlete.UserID) {
		writeError(w, http.StatusForbidden, "not enough permissions")
		return nil, false
	}
	return athlete, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
