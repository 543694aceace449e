package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/rapport/internal/progression"
)

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Level     int    `json:"level,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, apiErr apiError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(apiResponse{Error: &apiErr}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps engine errors onto HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rce *progression.RequiresCompletionError
		pe  *progression.PersistenceError
	)
	switch {
	case errors.As(err, &rce):
		respondError(w, http.StatusUnprocessableEntity, apiError{Code: "requires_completion", Message: rce.Error(), Level: rce.Level})
	case errors.Is(err, progression.ErrInvalidTarget):
		respondError(w, http.StatusBadRequest, apiError{Code: "invalid_target", Message: err.Error()})
	case errors.Is(err, progression.ErrNotFound):
		respondError(w, http.StatusNotFound, apiError{Code: "not_found", Message: err.Error()})
	case errors.Is(err, progression.ErrActivePath):
		respondError(w, http.StatusConflict, apiError{Code: "active_path", Message: err.Error()})
	case errors.As(err, &pe):
		s.logger.Error("persistence failure", "op", pe.Op, "error", pe.Err, "path", r.URL.Path)
		respondError(w, http.StatusServiceUnavailable, apiError{Code: "unavailable", Message: "storage temporarily unavailable", Retryable: pe.Retryable()})
	default:
		s.logger.Error("unhandled error", "error", err, "path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, apiError{Code: "internal_error", Message: "internal server error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, apiError{Code: "invalid_request", Message: "invalid JSON body"})
		return false
	}
	return true
}
