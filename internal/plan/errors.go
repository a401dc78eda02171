package plan

import "errors"

// Domain-specific errors for plan handling.
var (
	// ErrInvalidPayload is returned when an advisory payload fails the
	// structural schema check (e.g. actions is not an array). A payload
	// that fails here is discarded wholesale; per-action problems are
	// handled by dropping individual actions instead.
	ErrInvalidPayload = errors.New("plan: invalid payload")
)
