// ABOUTME: Dashboard handlers: overview, leaderboards, athlete progress.
// ABOUTME: Staff see all data; everyone else is scoped to their own athletes.
package server

import (
	"net/http"

	"github.com/velolab/velo/internal/models"
	"github.com/velolab/velo/internal/stats"
	"github.com/velolab/velo/internal/storage"
)

// statsScope builds the stats filter for the request: owner scope plus the
// optional test_type and days query parameters.
func statsScope(r *http.Request, user *models.User) (storage.StatsFilter, bool) {
	var f storage.StatsFilter
	if !user.IsStaff {
		f.OwnerID = &user.ID
	}
	if tt := r.URL.Query().Get("test_type"); tt != "" {
		if !models.IsValidTestType(tt) {
			return f, false
		}
		typ := models.TestType(tt)
		f.Type = &typ
	}
	if r.URL.Query().Get("days") != "" {
		days := queryInt(r, "days", 0)
		if days > 0 {
			f.Since = stats.SinceDays(&days)
		}
	}
	return f, true
}

func (s *Server) handleStatsOverview(w http.ResponseWriter, r *http.Request, user *models.User) {
	f, ok := statsScope(r, user)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid test_type")
		return
	}

	overview, err := s.stats.Overview(f)
	if err != nil {
		writeStorageError(w, err, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleStatsTop(w http.ResponseWriter, r *http.Request, user *models.User) {
	f, ok := statsScope(r, user)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid test_type")
		return
	}

	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "vo2max"
	}

	top, err := s.stats.TopSessions(metric, f, queryInt(r, "limit", 5))
	if err != nil {
		if !storage.IsValidStatsMetric(metric) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStorageError(w, err, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleStatsProgress(w http.ResponseWriter, r *http.Request, user *models.User) {
	athlete, ok := s.athleteForUser(w, r, user)
	if !ok {
		return
	}

	f, scopeOK := statsScope(r, user)
	if !scopeOK {
		writeError(w, http.StatusBadRequest, "invalid test_type")
		return
	}
	if r.URL.Query().Get("days") == "" {
		days := 90
		f.Since = stats.SinceDays(&days)
	}

	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "vo2max"
	}

	report, err := s.stats.Progress(athlete.ID, metric, f)
	if err != nil {
		if !storage.IsValidStatsMetric(metric) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStorageError(w, err, "athlete not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
