package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tinoosan/bookkeep/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }

// domainErr maps engine sentinels onto HTTP statuses.
func domainErr(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, msg, "not_found")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, msg, "conflict")
	case errors.Is(err, errs.ErrInUse):
		writeErr(w, http.StatusConflict, msg, "in_use")
	case errors.Is(err, errs.ErrUnbalanced):
		writeErr(w, http.StatusUnprocessableEntity, msg, "unbalanced")
	case errors.Is(err, errs.ErrPlaceholder):
		writeErr(w, http.StatusUnprocessableEntity, msg, "placeholder")
	case errors.Is(err, errs.ErrCycle):
		writeErr(w, http.StatusUnprocessableEntity, msg, "cycle")
	case errors.Is(err, errs.ErrNoRateAvailable):
		writeErr(w, http.StatusUnprocessableEntity, msg, "no_rate_available")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusUnprocessableEntity, msg, "validation_error")
	case errors.Is(err, errs.ErrClosed):
		writeErr(w, http.StatusServiceUnavailable, msg, "closed")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
	}
}
