package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchema enforces the structural contract on advisory output:
// an object whose actions field, when present, is an array of objects.
// Field-level problems inside an action are deliberately not schema
// errors — those are dropped per action during validation so one bad
// action never discards the rest of the plan.
const payloadSchema = `{
	"type": "object",
	"required": ["actions"],
	"properties": {
		"summary": {"type": "string"},
		"actions": {
			"type": "array",
			"items": {"type": "object"}
		},
		"co2_advisory": {"type": "string"},
		"dewpoint_risk": {"type": "string"},
		"next_check_note": {"type": "string"}
	}
}`

var compiledPayloadSchema = jsonschema.MustCompileString("plan_payload.json", payloadSchema)

// ActionPayload is one action as proposed by the advisory service,
// before validation. Fields are loosely typed because the payload is
// externally sourced and must never be trusted structurally.
type ActionPayload struct {
	ExecuteAt   any    `json:"execute_at"`
	Channel     any    `json:"channel"`
	Value       any    `json:"value"`
	DurationSec any    `json:"duration_sec"`
	Reason      string `json:"reason"`
}

// Payload is the untyped intermediate plan document extracted from the
// advisory response. It becomes a Plan only through ValidateActions.
type Payload struct {
	Summary       string          `json:"summary"`
	Actions       []ActionPayload `json:"actions"`
	CO2Advisory   string          `json:"co2_advisory"`
	DewpointRisk  string          `json:"dewpoint_risk"`
	NextCheckNote string          `json:"next_check_note"`
}

// DecodePayload parses and schema-validates an advisory plan payload.
//
// Parameters:
//   - data: raw JSON extracted from the advisory response
//
// Returns:
//   - *Payload: the structurally valid payload
//   - error: ErrInvalidPayload if the document violates the schema
func DecodePayload(data []byte) (*Payload, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if err := compiledPayloadSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, schemaErrorSummary(err))
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return &payload, nil
}

// schemaErrorSummary flattens a jsonschema validation error to one line.
func schemaErrorSummary(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}
