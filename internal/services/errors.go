package services

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every business-rule rejection.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrDuplicateGoalName   = fmt.Errorf("%w: an active goal with this name already exists", ErrValidation)
	ErrDuplicateShift      = fmt.Errorf("%w: a session for this date and shift already exists", ErrValidation)
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient safe balance", ErrValidation)
	ErrInvalidShift        = fmt.Errorf("%w: unknown shift type", ErrValidation)
	ErrSessionClosed       = fmt.Errorf("%w: session is already completed or skipped", ErrValidation)
)

var (
	ErrGoalNotFound         = errors.New("goal not found")
	ErrContributionNotFound = errors.New("contribution not found")
	ErrSessionNotFound      = errors.New("work session not found")
)

// ErrStorageUnavailable is returned by mutations when a collection could not
// be read; nothing is written in that case.
var ErrStorageUnavailable = errors.New("ledger storage unavailable")

// IsNotFound reports whether err is one of the unknown-ID errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGoalNotFound) ||
		errors.Is(err, ErrContributionNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}
