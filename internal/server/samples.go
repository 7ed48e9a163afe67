// ABOUTME: Sample handlers: manual entry, listing, CSV bulk upload.
// ABOUTME: Upload responses report accepted and skipped row counts.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/velolab/velo/internal/ingest"
	"github.com/velolab/velo/internal/models"
	"github.com/velolab/velo/internal/telemetry"
)

type sampleCreateRequest struct {
	Time            int     `json:"time"`
	Power           float64 `json:"power"`
	Oxygen          float64 `json:"oxygen"`
	Cadence         float64 `json:"cadence"`
	HeartRate       float64 `json:"heart_rate"`
	RespirationRate float64 `json:"respiration_rate"`
}

func (s *Server) handleAddSample(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, ok := s.sessionForUser(w, r, user)
	if !ok {
		return
	}

	var req sampleCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sample := models.NewSample(session.ID, req.Time, req.Power, req.Oxygen, req.Cadence, req.HeartRate, req.RespirationRate)
	if err := s.repo.AddSample(sample); err != nil {
		writeStorageError(w, err, "session not found")
		return
	}
	writeJSON(w, http.StatusCreated, sample)
}

func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, ok := s.sessionForUser(w, r, user)
	if !ok {
		return
	}

	samples, err := s.repo.ListSamples(session.ID, queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeStorageError(w, err, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, samples)
}

func (s *Server) handleGetSample(w http.ResponseWriter, r *http.Request, user *models.User) {
	sample, ok := s.sampleForUser(w, r, user)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

func (s *Server) handleDeleteSample(w http.ResponseWriter, r *http.Request, user *models.User) {
	sample, ok := s.sampleForUser(w, r, user)
	if !ok {
		return
	}
	if err := s.repo.DeleteSample(sample.ID); err != nil {
		writeStorageError(w, err, "sample not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const maxUploadBytes = 32 << 20

func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request, user *models.User) {
	session, ok := s.sessionForUser(w, r, user)
	if !ok {
		return
	}

	compute := true
	if v := r.URL.Query().Get("calculate_metrics"); v == "false" || v == "0" {
		compute = false
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	start := time.Now()
	result, err := s.pipeline.Ingest(session.ID, header.Filename, file, compute)
	if err != nil {
		if errors.Is(err, ingest.ErrFormat) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStorageError(w, err, "session not found")
		return
	}

	telemetry.IngestDuration.Observe(time.Since(start).Seconds())
	telemetry.RowsIngested.Add(float64(result.AcceptedCount))
	telemetry.RowsSkipped.Add(float64(result.SkippedCount))
	if result.MetricsComputed {
		telemetry.MetricsRecomputed.Inc()
	}

	writeJSON(w, http.StatusCreated, result)
}

// sampleForUser loads the sample in the path and enforces access through the
// sample's session and athlete.
func (s *Server) sampleForUser(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Sample, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	sample, err := s.repo.GetSample(id)
	if err != nil {
		writeStorageError(w, err, "sample not found")
		return nil, false
	}

	session, err := s.repo.GetSession(sample.SessionID)
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
	return sample, true
}
