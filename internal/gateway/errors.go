package gateway

import "errors"

// Domain-specific errors for Gateway operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrLockedOut is returned when the Gateway rejects a relay command
	// because its physical-override lockout is active (HTTP 423). Every
	// layer treats this as a benign skip, never a failure.
	ErrLockedOut = errors.New("gateway: locked out")

	// ErrRequestFailed is returned when a Gateway request cannot be
	// completed (network error, timeout, malformed response).
	ErrRequestFailed = errors.New("gateway: request failed")

	// ErrUnexpectedStatus is returned when the Gateway answers with a
	// status code outside the documented contract.
	ErrUnexpectedStatus = errors.New("gateway: unexpected status")
)
