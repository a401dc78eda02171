package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
)

// Logger interface for optional logging support.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// defaultTimeout bounds Gateway calls when no timeout is configured.
const defaultTimeout = 10 * time.Second

// Client is the HTTP client for the actuator/sensor Gateway.
//
// The Gateway is the single serialization point for actuator writes:
// every layer issues relay commands through it and every layer reads
// the same lockout flag from it. The client itself is stateless; each
// control process creates one per run.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     Logger
}

// New creates a Gateway client from configuration.
//
// Parameters:
//   - cfg: Gateway connection settings from config.yaml
//   - logger: Logger instance (nil for no logging)
func New(cfg config.GatewayConfig, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Sensors fetches the full sensor reading map from GET /api/sensors.
//
// Returns:
//   - SensorSnapshot: readings keyed by source ID, with the raw body retained
//   - error: ErrRequestFailed on communication or decode failure
func (c *Client) Sensors(ctx context.Context) (SensorSnapshot, error) {
	body, err := c.get(ctx, "/api/sensors")
	if err != nil {
		return SensorSnapshot{}, err
	}

	var wire struct {
		Sensors map[string]map[string]any `json:"sensors"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return SensorSnapshot{}, fmt.Errorf("%w: decoding sensors: %w", ErrRequestFailed, err)
	}

	snapshot := SensorSnapshot{
		Sensors: make(map[string]Reading, len(wire.Sensors)),
		Raw:     body,
	}
	for source, fields := range wire.Sensors {
		r := Reading{Fields: fields}
		if v, ok := asFloat(fields["value"]); ok {
			value := v
			r.Value = &value
		}
		snapshot.Sensors[source] = r
	}

	return snapshot, nil
}

// Status fetches the Gateway state from GET /api/status.
//
// Returns:
//   - Status: lockout flag and last-known relay states
//   - error: ErrRequestFailed on communication or decode failure
func (c *Client) Status(ctx context.Context) (Status, error) {
	body, err := c.get(ctx, "/api/status")
	if err != nil {
		return Status{}, err
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return Status{}, fmt.Errorf("%w: decoding status: %w", ErrRequestFailed, err)
	}

	return status, nil
}

// SetRelay issues a relay command via POST /api/relay/{channel}.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - channel: Relay channel number
//   - cmd: Command value, optional duration and reason
//
// Returns:
//   - error: ErrLockedOut if the Gateway reports HTTP 423 (benign skip),
//     ErrRequestFailed on communication failure, ErrUnexpectedStatus otherwise
func (c *Client) SetRelay(ctx context.Context, channel int, cmd RelayCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("%w: encoding relay command: %w", ErrRequestFailed, err)
	}

	url := fmt.Sprintf("%s/api/relay/%d", c.baseURL, channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusLocked:
		return ErrLockedOut
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.logger.Info("relay command accepted",
			"channel", channel, "value", cmd.Value, "duration_sec", cmd.DurationSec)
		return nil
	default:
		return fmt.Errorf("%w: POST relay/%d returned %d", ErrUnexpectedStatus, channel, resp.StatusCode)
	}
}

// ClearEmergency releases the Gateway's physical-override lockout via
// POST /api/emergency/clear. This sits outside the control layers' write
// path; it exists for operator tooling.
func (c *Client) ClearEmergency(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/emergency/clear", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: POST emergency/clear returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

// get performs a GET request against the Gateway and returns the body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}

	return body, nil
}

// setAuth attaches the API key header when one is configured.
func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}
