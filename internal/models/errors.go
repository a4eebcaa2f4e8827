package models

import "errors"

// Aggregate invariant violations. Services re-export these alongside their own errors.
var (
	ErrInvalidReportState = errors.New("report cannot move to the requested state")
	ErrPenaltyNotActive   = errors.New("penalty is not active")
	ErrDailyLimitExceeded = errors.New("daily point limit exceeded")
	ErrInsufficientPoints = errors.New("insufficient available points")
	ErrInvalidPoints      = errors.New("points must be positive")
)
