// Package logging provides structured logging for Hothouse Core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across all four control layers.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("run complete", "component", "rules")
//	logger.Error("gateway unreachable", "error", err)
//
// # Security
//
// Never log secrets, tokens, passwords, or API keys.
package logging
