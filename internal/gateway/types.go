package gateway

import "strconv"

// Reading is one sensor reading as reported by the Gateway. The Gateway
// nests arbitrary per-sensor fields, so everything beyond the common
// `value` field is kept in Fields for tolerant extraction.
type Reading struct {
	Value  *float64
	Fields map[string]any
}

// SensorSnapshot is the full reading map from GET /api/sensors, keyed by
// sensor source ID. Any source, and any field within a source, may be
// absent; accessors return ok=false rather than zero values so callers
// can distinguish "missing" from "zero".
type SensorSnapshot struct {
	Sensors map[string]Reading `json:"-"`

	// Raw is the response body as received, kept for journal snapshots.
	Raw []byte `json:"-"`
}

// Value returns the `value` field of the named source.
func (s SensorSnapshot) Value(source string) (float64, bool) {
	r, ok := s.Sensors[source]
	if !ok || r.Value == nil {
		return 0, false
	}
	return *r.Value, true
}

// Field returns a named numeric field of the named source.
func (s SensorSnapshot) Field(source, field string) (float64, bool) {
	r, ok := s.Sensors[source]
	if !ok {
		return 0, false
	}
	return asFloat(r.Fields[field])
}

// Weather holds the outdoor readings the control layers depend on.
// Missing fields read as zero, matching the fail-safe defaults used
// throughout rule evaluation.
type Weather struct {
	Rainfall    float64
	WindSpeedMS float64

	// WindDirection is a 1-16 compass sector index; 0 means unknown.
	WindDirection int
}

// Weather scans every source for the known weather field aliases and
// returns the first value found for each. Weather stations publish
// under varying keys (`rainfall` vs `rainfall_mm`, `wind_speed_ms` vs
// `wind_speed`), so extraction is alias-tolerant.
func (s SensorSnapshot) Weather() Weather {
	var w Weather
	haveRain, haveWind, haveDir := false, false, false

	for _, r := range s.Sensors {
		if !haveRain {
			for _, key := range []string{"rainfall", "rainfall_mm"} {
				if v, ok := asFloat(r.Fields[key]); ok {
					w.Rainfall = v
					haveRain = true
					break
				}
			}
		}
		if !haveWind {
			for _, key := range []string{"wind_speed_ms", "wind_speed"} {
				if v, ok := asFloat(r.Fields[key]); ok {
					w.WindSpeedMS = v
					haveWind = true
					break
				}
			}
		}
		if !haveDir {
			if v, ok := asFloat(r.Fields["wind_direction"]); ok {
				w.WindDirection = int(v)
				haveDir = true
			}
		}
		if haveRain && haveWind && haveDir {
			break
		}
	}

	return w
}

// asFloat converts the loosely-typed JSON values the Gateway emits.
func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}

// Status is the response of GET /api/status.
type Status struct {
	// LockedOut reports the Gateway's own physical-override lockout.
	LockedOut bool `json:"locked_out"`

	// RelayState maps channel number (as a string key, per the wire
	// format) to the relay's current on/off state.
	RelayState map[string]bool `json:"relay_state"`
}

// RelayOn reports the last known state of a relay channel.
func (s Status) RelayOn(channel int) (bool, bool) {
	on, ok := s.RelayState[strconv.Itoa(channel)]
	return on, ok
}

// RelayCommand is the body of POST /api/relay/{channel}.
type RelayCommand struct {
	// Value is 1 for on, 0 for off.
	Value int `json:"value"`

	// DurationSec, when positive, auto-reverts the relay after this
	// many seconds (timed irrigation, graded window moves).
	DurationSec int `json:"duration_sec,omitempty"`

	// Reason is free text recorded by the Gateway for audit.
	Reason string `json:"reason,omitempty"`
}