// Package gateway provides the HTTP client for the actuator/sensor Gateway.
//
// The Gateway is the external daemon that owns the physical relay and
// sensor stack. It is the only actuation path available to the control
// layers and the single serialization point for conflicting writes
// (last writer wins). This package covers the four endpoints the
// control core depends on:
//
//   - GET  /api/sensors         — nested reading map keyed by sensor source
//   - GET  /api/status          — lockout flag + relay states
//   - POST /api/relay/{channel} — timed relay command (423 = lockout skip)
//   - POST /api/emergency/clear — manual override release
//
// A 423 response maps to ErrLockedOut, which every caller treats as a
// recognised skip state, never a failure. All other communication
// failures are terminal for the calling run; the next scheduled
// invocation retries independently.
package gateway
