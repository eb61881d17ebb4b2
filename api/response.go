package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wakegate/core/auth"
	"wakegate/core/store"
	"wakegate/core/utils"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

// writeAuthError maps the auth failure taxonomy onto HTTP responses.
// Anything outside the taxonomy is an internal failure: full detail goes to
// the log, the client gets a generic message.
func writeAuthError(w http.ResponseWriter, logger *utils.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), auth.ErrValidation.Error()+": ")
		writeError(w, http.StatusBadRequest, "validation", msg)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
	case errors.Is(err, auth.ErrOTPRequired):
		writeError(w, http.StatusUnauthorized, "otp_required", "One-time code required")
	case errors.Is(err, auth.ErrOTPInvalid):
		writeError(w, http.StatusUnauthorized, "otp_invalid", "One-time code invalid")
	case errors.Is(err, auth.ErrAlreadyExists), errors.Is(err, store.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", "Already exists")
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Not found")
	default:
		if logger != nil {
			logger.Errorf("internal error: %v", err)
		}
		writeError(w, http.StatusInternalServerError, "server_error", "Server error")
	}
}
