package advisor

import "errors"

// Sentinel errors for the advisory client.
// Callers should use errors.Is() to check error types.
var (
	// ErrRequestFailed indicates the advisory service could not be
	// reached or returned a malformed response.
	ErrRequestFailed = errors.New("advisor: request failed")

	// ErrUnexpectedStatus indicates the advisory service returned a
	// non-success HTTP status.
	ErrUnexpectedStatus = errors.New("advisor: unexpected status")

	// ErrNoResponse indicates the exchange ended without the advisor
	// producing a final text message (tool round budget exhausted or an
	// empty completion).
	ErrNoResponse = errors.New("advisor: no final response")

	// ErrUnknownTool indicates the advisor requested a tool outside the
	// fixed read-only set.
	ErrUnknownTool = errors.New("advisor: unknown tool")
)
