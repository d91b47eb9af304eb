package http

import (
	"net/http"

	"github.com/aussiebroadwan/trivia/pkg/authsdk"
	"github.com/aussiebroadwan/trivia/pkg/httpx"
)

const (
	msgInternal      = "Internal server error."
	msgTokenNotFound = "Confirmation token not found."
)

func writeSuccess(w http.ResponseWriter, r *http.Request, message string, data any) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.Response{
		Status:  authsdk.StatusSuccess,
		Message: message,
		Data:    data,
		URL:     r.URL.Path,
	})
}

// writeRejected answers business failures. They all use 404 so a client
// cannot tell an unknown user from a wrong password by status code.
func writeRejected(w http.ResponseWriter, r *http.Request, message string) {
	httpx.WriteJSON(w, http.StatusNotFound, authsdk.Response{
		Status:  authsdk.StatusRejected,
		Message: message,
		URL:     r.URL.Path,
	})
}

func writeException(w http.ResponseWriter, r *http.Request, code int, message string, cause []string) {
	httpx.WriteJSON(w, code, authsdk.Response{
		Status:  authsdk.StatusException,
		Message: message,
		URL:     r.URL.Path,
		Cause:   cause,
	})
}

// writePanic is the body httpx.Recover sends after a handler panicked.
func writePanic(w http.ResponseWriter, r *http.Request) {
	writeException(w, r, http.StatusInternalServerError, msgInternal, nil)
}
