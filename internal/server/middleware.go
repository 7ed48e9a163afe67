// ABOUTME: Bearer-token authentication and request instrumentation.
// ABOUTME: Authenticated handlers receive the resolved user directly.
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
	"github.com/velolab/velo/internal/telemetry"
)

// authedHandler is a handler that runs with a verified, active user.
type authedHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

func (s *Server) withAuth(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		userID, err := s.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}

		user, err := s.repo.GetUser(userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}
		if !user.IsActive {
			writeError(w, http.StatusForbidden, "inactive user")
			return
		}

		h(w, r, user)
	}
}

func (s *Server) withStaff(h authedHandler) http.HandlerFunc {
	return s.withAuth(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		if !user.IsStaff {
			writeError(w, http.StatusForbidden, "staff privileges required")
			return
		}
		h(w, r, user)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request count and latency under the route pattern.
func (s *Server) instrument(pattern string, h http.HandlerFunc) http.HandlerFunc {
	method, endpoint, _ := strings.Cut(pattern, " ")
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h(rec, r)
		telemetry.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
		telemetry.RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(rec.status)).Inc()
	}
}

// pathID parses the {id} path segment. A second return of false means the
// response has already been written.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
