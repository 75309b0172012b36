package domain

import "errors"

var (
	// ErrActivityNotFound is returned when an activity is absent or not owned
	// by the caller.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrGoalNotFound is returned when a goal is absent or not owned by the caller.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrInvalidDate reports a malformed reference date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrQuotaExhausted is returned when a user has no analysis credits left.
	ErrQuotaExhausted = errors.New("no analysis credits remaining")
)
