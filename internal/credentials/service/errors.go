package service

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenStale         = errors.New("token superseded")
	ErrStorageFailure     = errors.New("storage failure")
	ErrDeliveryFailed     = errors.New("email delivery failed")
)

// storageFailure wraps an unanticipated persistence error so callers can
// match ErrStorageFailure while logs keep the operation and the cause.
func storageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return oops.
		Code("STORAGE_FAILURE").
		With("operation", op).
		Wrap(fmt.Errorf("%w: %w", ErrStorageFailure, err))
}
