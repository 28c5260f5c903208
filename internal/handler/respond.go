// Package handler provides the HTTP boundary for the Shelfmark API.
// Handlers decode requests, call services, and map service results to
// status codes and JSON bodies.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shelfmark/internal/service"
)

// messageResponse is the body shape for status/error messages.
type messageResponse struct {
	Message string `json:"message"`
}

// loginResponse is the body shape for a successful login.
type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage writes a standard {"message": ...} body.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeServiceError maps service errors to the API contract. Domain errors
// get their specific status and message; anything else is logged and
// surfaced as a generic 500 without leaking internal detail.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrDuplicateBook):
		writeMessage(w, http.StatusBadRequest, "Book with this title or code already exists")
	case errors.Is(err, service.ErrBookNotFound):
		writeMessage(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, service.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error().Err(err).Msg("unhandled service error")
		writeMessage(w, http.StatusInternalServerError, "Something went wrong!")
	}
}
