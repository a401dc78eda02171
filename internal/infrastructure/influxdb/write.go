package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorMetric records a single environment reading.
//
// This is the primary method for recording gateway sensor telemetry.
//
// Parameters:
//   - name: The sensor name (e.g., "air_temp", "solar_radiation")
//   - source: The reading source (e.g., "house/climate/air_temp")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteSensorMetric("air_temp", "house/climate/air_temp", 26.4)
func (c *Client) WriteSensorMetric(name string, source string, value float64) {
	c.writePoint(write.NewPoint(
		"sensor",
		map[string]string{
			"name":   name,
			"source": source,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	))
}

// WriteRunResult records the outcome of a control process run.
//
// Parameters:
//   - component: The control layer that ran (e.g., "rules", "executor")
//   - outcome: Terminal state of the run (e.g., "completed", "skipped", "failed")
//   - actions: Number of actuator commands issued during the run
//   - duration: Wall-clock duration of the run
func (c *Client) WriteRunResult(component string, outcome string, actions int, duration time.Duration) {
	c.writePoint(write.NewPoint(
		"control_run",
		map[string]string{
			"component": component,
			"outcome":   outcome,
		},
		map[string]interface{}{
			"actions":     actions,
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	))
}

// WriteSolarDose records the accumulated daily solar dose.
//
// Parameters:
//   - date: The accumulation day in YYYY-MM-DD form
//   - doseMJ: Accumulated dose in MJ/m²
//   - triggered: Whether this tick crossed the irrigation threshold
func (c *Client) WriteSolarDose(date string, doseMJ float64, triggered bool) {
	c.writePoint(write.NewPoint(
		"solar_dose",
		map[string]string{
			"date": date,
		},
		map[string]interface{}{
			"dose_mj":   doseMJ,
			"triggered": triggered,
		},
		time.Now(),
	))
}

// WriteLockoutEvent records an emergency interlock transition.
//
// Parameters:
//   - action: The emergency action taken ("open" or "close")
//   - temperature: The reading that triggered the transition, in °C
func (c *Client) WriteLockoutEvent(action string, temperature float64) {
	c.writePoint(write.NewPoint(
		"lockout",
		map[string]string{
			"action": action,
		},
		map[string]interface{}{
			"temperature": temperature,
		},
		time.Now(),
	))
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.writePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
