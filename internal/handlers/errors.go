package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"vocabdrill/internal/logger"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
	"vocabdrill/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondWithError(log *logger.Logger, w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Error(logMsg, "status", status, "error", err)
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps a service or storage error to a status code.
// Only unexpected failures are logged.
func respondWithServiceError(log *logger.Logger, w http.ResponseWriter, logMsg string, err error) {
	var ve validation.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, security.ErrInvalidToken):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrNoActiveExample),
		errors.Is(err, service.ErrAlreadyAnswered),
		errors.Is(err, service.ErrStaleExample):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrIntegrityViolation):
		respondWithError(log, w, http.StatusConflict, "Conflicting update, please retry", logMsg, err)
	case errors.Is(err, repository.ErrStorageUnavailable):
		respondWithError(log, w, http.StatusServiceUnavailable, ErrStorageUnavailable, logMsg, err)
	default:
		respondWithError(log, w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
