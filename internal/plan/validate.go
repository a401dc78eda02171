package plan

import (
	"fmt"
	"time"
)

// Logger interface for optional logging support.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Limits are the hard bounds applied to every action at ingestion.
// Both validation and dispatch read them from the shared control
// configuration so the two never disagree.
type Limits struct {
	// ChannelMax is the highest valid relay channel; valid channels
	// are [1, ChannelMax].
	ChannelMax int

	// MaxDurationSec is the hard ceiling for timed commands. Longer
	// durations are clamped with a warning, never rejected.
	MaxDurationSec int
}

// timestamp layouts accepted for execute_at. The advisory service is
// asked for RFC 3339 but occasionally omits the offset; naive
// timestamps are read in the site's timezone.
var executeAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ValidateActions filters externally-sourced action payloads into
// well-typed actions.
//
// Per-action rules, applied at ingestion:
//   - channel outside [1, ChannelMax] → dropped
//   - value not 0 or 1 → dropped
//   - duration not numeric or negative → dropped
//   - duration above MaxDurationSec → clamped, kept, warned
//   - execute_at unparseable → dropped
//
// Every surviving action starts as MarkPending.
//
// Parameters:
//   - payloads: loosely-typed actions from the advisory payload
//   - limits: channel/duration bounds from control configuration
//   - loc: site timezone for naive timestamps
//   - logger: Logger instance (nil for no logging)
func ValidateActions(payloads []ActionPayload, limits Limits, loc *time.Location, logger Logger) []Action {
	if logger == nil {
		logger = noopLogger{}
	}
	if loc == nil {
		loc = time.Local
	}

	validated := make([]Action, 0, len(payloads))
	for i, p := range payloads {
		channel, ok := asInt(p.Channel)
		if !ok || channel < 1 || channel > limits.ChannelMax {
			logger.Warn("action dropped: channel out of range",
				"index", i, "channel", fmt.Sprintf("%v", p.Channel), "max", limits.ChannelMax)
			continue
		}

		value, ok := asInt(p.Value)
		if !ok || (value != 0 && value != 1) {
			logger.Warn("action dropped: value not binary",
				"index", i, "channel", channel, "value", fmt.Sprintf("%v", p.Value))
			continue
		}

		duration := 0
		if p.DurationSec != nil {
			duration, ok = asInt(p.DurationSec)
			if !ok || duration < 0 {
				logger.Warn("action dropped: duration not a non-negative number",
					"index", i, "channel", channel, "duration", fmt.Sprintf("%v", p.DurationSec))
				continue
			}
		}
		if duration > limits.MaxDurationSec {
			logger.Warn("action duration clamped",
				"index", i, "channel", channel,
				"duration", duration, "ceiling", limits.MaxDurationSec)
			duration = limits.MaxDurationSec
		}

		executeAt, ok := parseExecuteAt(p.ExecuteAt, loc)
		if !ok {
			logger.Warn("action dropped: execute_at not a valid timestamp",
				"index", i, "channel", channel, "execute_at", fmt.Sprintf("%v", p.ExecuteAt))
			continue
		}

		validated = append(validated, Action{
			ExecuteAt:   executeAt,
			Channel:     channel,
			Value:       value,
			DurationSec: duration,
			Reason:      p.Reason,
			Executed:    MarkPending,
		})
	}

	return validated
}

// parseExecuteAt parses the scheduled time from the loose payload value.
func parseExecuteAt(v any, loc *time.Location) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}

	for _, layout := range executeAtLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// asInt accepts the numeric encodings JSON decoding can produce, but
// only whole values: a fractional channel or value is a malformed
// action, not a rounding candidate.
func asInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val != float64(int(val)) {
			return 0, false
		}
		return int(val), true
	default:
		return 0, false
	}
}
