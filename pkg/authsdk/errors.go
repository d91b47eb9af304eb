package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a rejected or exception envelope returned by the service.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Status is the envelope status, StatusRejected or StatusException
	Status string

	// Message is the envelope message
	Message string

	// Cause lists validation violations, if any
	Cause []string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (%d): %s", e.Status, e.StatusCode, e.Message)
	if len(e.Cause) > 0 {
		msg += ": " + strings.Join(e.Cause, "; ")
	}
	return msg
}

// IsRejected reports whether err is a rejected envelope, the answer for bad
// credentials, duplicates and unknown tokens.
func IsRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == StatusRejected
}

// IsValidation reports whether err is a 422 exception from schema validation.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity
}

// parseErrorResponse turns a non-success response into an APIError. Bodies
// that are not envelopes still produce an error carrying the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env Response
	if err := json.Unmarshal(body, &env); err == nil && env.Status != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     env.Status,
			Message:    env.Message,
			Cause:      env.Cause,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     StatusException,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
