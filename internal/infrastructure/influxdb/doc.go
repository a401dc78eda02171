// Package influxdb provides InfluxDB telemetry for hothouse control runs.
//
// It wraps the official influxdb-client-go v2 library with the patterns
// used across the hothouse infrastructure packages: sentinel errors and
// a connection verified up front.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Gateway sensor readings captured during control runs
//   - Control run outcomes (actions issued, duration, terminal state)
//   - Daily solar dose accumulation and irrigation triggers
//   - Emergency interlock transitions
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, log)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // Telemetry is off, control runs proceed without it
//	}
//	defer client.Close()
//
//	client.WriteSensorMetric("air_temp", "house/climate/air_temp", 26.4)
//
// # Error Handling
//
// A control run emits only a handful of points, so each is written
// synchronously under its own deadline; a failed write is warned and
// dropped. Telemetry failures must never fail a control run; callers
// log and continue.
package influxdb
