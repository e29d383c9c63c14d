package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/savingsjars/backend/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object from the body into dst and writes
// the error response itself when that fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendLedgerError maps ledger errors onto HTTP status codes.
func sendLedgerError(w http.ResponseWriter, component string, err error) {
	switch {
	case services.IsNotFound(err):
		services.SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, services.ErrValidation):
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, services.ErrStorageUnavailable):
		log.Printf("[%s] storage unavailable: %v", component, err)
		services.SendErrorResponse(w, "Storage temporarily unavailable", http.StatusServiceUnavailable, nil)
	default:
		log.Printf("[%s] unexpected error: %v", component, err)
		services.SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}
