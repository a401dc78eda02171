package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
)

// Logger defines the interface for advisory exchange logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// noopLogger is used when no logger is provided.
type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{}) {}

// Default exchange parameters applied when the config leaves them zero.
const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRounds  = 5
	defaultMaxTokens  = 1024
	completionsPath   = "/v1/chat/completions"
	defaultModelLabel = "advisory-local"
)

// Client talks to an OpenAI-compatible chat completions endpoint and
// runs the bounded tool-calling exchange the planner uses to obtain a
// climate plan.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	maxRounds  int
	temp       float64
	httpClient *http.Client
	logger     Logger
}

// Result is the outcome of a completed advisory exchange.
type Result struct {
	// Text is the advisor's final message content.
	Text string

	// Raw is the final message verbatim, kept for journalling.
	Raw string

	// Snapshot accumulates every tool result gathered during the
	// exchange, one section per call.
	Snapshot string
}

// New creates an advisory client from configuration.
//
// Parameters:
//   - cfg: Advisor connection settings
//   - logger: Logger for exchange progress (nil for no logging)
//
// Returns:
//   - *Client: Configured client
func New(cfg config.AdvisorConfig, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	model := cfg.Model
	if model == "" {
		model = defaultModelLabel
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		maxTokens:  maxTokens,
		maxRounds:  maxRounds,
		temp:       cfg.Temperature,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Consult runs the advisory exchange: the system and user prompts go
// out with the read-only tool set, tool calls are resolved against the
// handler, and the exchange ends when the advisor produces a final text
// message or the round budget runs out.
//
// The first round forces a tool call so the advisor always grounds its
// plan in live readings; subsequent rounds leave tool use to the model.
//
// Parameters:
//   - ctx: Context for cancellation
//   - systemPrompt: Planning instructions and output contract
//   - userPrompt: Current conditions and recent decision history
//   - handler: Resolver for get_sensors / get_status calls
//
// Returns:
//   - Result: Final text plus the accumulated sensor snapshot
//   - error: ErrNoResponse if no final message arrived, or a transport error
func (c *Client) Consult(ctx context.Context, systemPrompt, userPrompt string, handler ToolHandler) (Result, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	var snapshot strings.Builder
	tools := toolDefinitions()

	for round := 0; round < c.maxRounds; round++ {
		choice := "auto"
		if round == 0 {
			choice = "required"
		}

		reply, err := c.complete(ctx, chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temp,
			MaxTokens:   c.maxTokens,
			Stream:      false,
			Tools:       tools,
			ToolChoice:  choice,
		})
		if err != nil {
			return Result{}, err
		}

		if len(reply.ToolCalls) == 0 {
			if strings.TrimSpace(reply.Content) == "" {
				return Result{}, fmt.Errorf("%w: empty completion", ErrNoResponse)
			}
			c.logger.Info("advisory exchange complete", "rounds", round+1)
			return Result{
				Text:     reply.Content,
				Raw:      reply.Content,
				Snapshot: snapshot.String(),
			}, nil
		}

		messages = append(messages, reply)

		for _, call := range reply.Function() {
			result, err := dispatchTool(ctx, handler, call.name)
			if err != nil {
				c.logger.Warn("tool call failed", "tool", call.name, "error", err)
				result = "error: " + err.Error()
			} else {
				fmt.Fprintf(&snapshot, "\n--- %s ---\n%s", call.name, result)
			}
			messages = append(messages, Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.id,
				Name:       call.name,
			})
		}
	}

	return Result{Snapshot: snapshot.String()}, fmt.Errorf("%w: tool round budget exhausted", ErrNoResponse)
}

// resolvedCall is a tool call with the name extracted, tolerant of
// arguments arriving as a JSON string rather than an object.
type resolvedCall struct {
	id   string
	name string
}

// Function flattens the message's tool calls to (id, name) pairs.
func (m Message) Function() []resolvedCall {
	calls := make([]resolvedCall, 0, len(m.ToolCalls))
	for _, tc := range m.ToolCalls {
		calls = append(calls, resolvedCall{id: tc.ID, name: tc.Function.Name})
	}
	return calls
}

// complete performs a single chat completion round trip.
func (c *Client) complete(ctx context.Context, payload chatRequest) (Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("%w: encoding request: %v", ErrRequestFailed, err)
	}

	url := c.baseURL + completionsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Message{}, fmt.Errorf("%w: %d from %s: %s",
			ErrUnexpectedStatus, resp.StatusCode, url, strconv.Quote(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Message{}, fmt.Errorf("%w: decoding response: %v", ErrRequestFailed, err)
	}
	if len(decoded.Choices) == 0 {
		return Message{}, fmt.Errorf("%w: response had no choices", ErrRequestFailed)
	}

	return decoded.Choices[0].Message, nil
}
