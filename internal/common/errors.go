// Package common defines shared constants and sentinel errors used across
// AuthentiX components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Matching-engine errors.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrDegenerateVector  = errors.New("degenerate vector: zero norm")
	ErrPersistence       = errors.New("persistence failure")
	ErrExtraction        = errors.New("feature extraction failed")

	// Authentication-sequence errors.
	ErrInsufficientEnrollment = errors.New("insufficient enrollment")
	ErrLockedOut              = errors.New("locked out")
	ErrSessionNotFound        = errors.New("session not found")
	ErrWrongStep              = errors.New("sample does not match current step")
	ErrCancelled              = errors.New("sequence cancelled")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
