package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"congregationAPI/internal/errs"
)

// requestTimeout bounds every handler's store work.
const requestTimeout = 5 * time.Second

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps the error taxonomy to status codes. Store
// failures are logged and reported with a fixed message.
func respondWithServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, errs.ErrNotAuthenticated):
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, errs.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, errs.ErrAlreadyEnrolled):
		respondWithError(w, http.StatusConflict, "Already enrolled in this challenge")
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("Handlers: %s timed out: %v", action, err)
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		log.Printf("Handlers: failed to %s: %v", action, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.UseNumber()
	return dec.Decode(dst)
}
