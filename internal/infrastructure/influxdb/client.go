package influxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
)

// Default timeouts for InfluxDB operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultWriteTimeout   = 5 * time.Second
)

// Logger is the logging interface the client requires.
type Logger interface {
	Warn(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Client wraps the InfluxDB v2 client for hothouse telemetry.
//
// A control run is a short single-shot process emitting a handful of
// points, so writes go through the synchronous API under a per-write
// deadline instead of a batching buffer; there is nothing to flush at
// exit. Telemetry is always optional: a missing or unhealthy InfluxDB
// never blocks a control run, and a failed write is logged and dropped.
type Client struct {
	client  influxdb2.Client
	write   api.WriteAPIBlocking
	timeout time.Duration
	logger  Logger
}

// Connect establishes a connection to the InfluxDB server.
//
// Connectivity is verified with a ping before the client is returned.
//
// Parameters:
//   - cfg: InfluxDB configuration from config.yaml
//   - logger: Destination for dropped-write warnings, may be nil
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If telemetry is disabled or connection fails
func Connect(cfg config.InfluxDBConfig, logger Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if logger == nil {
		logger = noopLogger{}
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	timeout := defaultWriteTimeout
	if cfg.WriteTimeout > 0 {
		timeout = time.Duration(cfg.WriteTimeout) * time.Second
	}

	return &Client{
		client:  client,
		write:   client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Close shuts down the InfluxDB connection. Synchronous writes leave
// no buffer behind, so there is nothing to flush.
//
// Returns:
//   - error: nil (InfluxDB client Close doesn't return errors)
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.client.Close()
	return nil
}

// writePoint performs one synchronous write under the configured
// deadline. Failures are warned and the point is dropped.
func (c *Client) writePoint(p *write.Point) {
	if c == nil || c.write == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.write.WritePoint(ctx, p); err != nil {
		c.logger.Warn("telemetry point dropped",
			"measurement", p.Name(),
			"error", fmt.Errorf("%w: %w", ErrWriteFailed, err))
	}
}
