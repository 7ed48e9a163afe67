// ABOUTME: JSON response and request helpers shared by all handlers.
// ABOUTME: Errors are rendered as {"detail": "..."} bodies.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/velolab/velo/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeStorageError maps repository errors onto HTTP statuses.
func writeStorageError(w http.ResponseWriter, err error, notFoundDetail string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundDetail)
	case errors.Is(err, storage.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "email already registered")
	default:
		log.Printf("storage error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}
