package advisor

import (
	"context"
	"fmt"
)

// Tool names the advisor may call. The set is fixed and read-only: the
// advisor observes conditions but never actuates anything directly.
const (
	toolGetSensors = "get_sensors"
	toolGetStatus  = "get_status"
)

// ToolHandler resolves advisor tool calls against the live system.
// Both methods return a textual rendering suitable for feeding back
// into the conversation.
type ToolHandler interface {
	// GetSensors returns the current sensor readings.
	GetSensors(ctx context.Context) (string, error)

	// GetStatus returns relay states and the hardware lockout flag.
	GetStatus(ctx context.Context) (string, error)
}

// toolDefinitions is the tool list sent with every request.
func toolDefinitions() []Tool {
	emptyParams := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}

	return []Tool{
		{
			Type: "function",
			Function: ToolFunction{
				Name:        toolGetSensors,
				Description: "Read current greenhouse sensor values (temperature, humidity, soil moisture, weather station).",
				Parameters:  emptyParams,
			},
		},
		{
			Type: "function",
			Function: ToolFunction{
				Name:        toolGetStatus,
				Description: "Read current relay channel states and the emergency lockout flag.",
				Parameters:  emptyParams,
			},
		},
	}
}

// dispatchTool routes a tool call to the handler.
func dispatchTool(ctx context.Context, handler ToolHandler, name string) (string, error) {
	switch name {
	case toolGetSensors:
		return handler.GetSensors(ctx)
	case toolGetStatus:
		return handler.GetStatus(ctx)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}
