package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/trivia/internal/credentials/service"
	"github.com/aussiebroadwan/trivia/pkg/schemax"
	"github.com/aussiebroadwan/trivia/pkg/slogx"
)

// writeError maps a service or validation error onto the envelope.
// Unexpected errors are logged with their detail and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *schemax.ValidationError

	switch {
	case errors.As(err, &ve):
		writeException(w, r, http.StatusUnprocessableEntity, "Request failed validation.", ve.Messages)
	case errors.Is(err, service.ErrInvalidInput):
		writeException(w, r, http.StatusUnprocessableEntity, "Invalid input.", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeRejected(w, r, "Invalid login credentials.")
	case errors.Is(err, service.ErrDuplicateUsername):
		writeRejected(w, r, "Username is already registered.")
	case errors.Is(err, service.ErrDuplicateEmail):
		writeRejected(w, r, "Email is already registered.")
	case errors.Is(err, service.ErrUnknownUser):
		writeRejected(w, r, "Unknown user.")
	default:
		slogx.FromContext(r.Context()).Error("credentials request failed", "error", err)
		writeException(w, r, http.StatusInternalServerError, msgInternal, nil)
	}
}
