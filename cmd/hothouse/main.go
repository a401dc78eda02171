// Hothouse Core - Greenhouse Climate Control
//
// This is the main entry point for the Hothouse control layers. Each
// subcommand runs one layer exactly once and exits; the scheduler
// (cron or a systemd timer) provides the cadence:
//   - hothouse interlock  every minute
//   - hothouse execute    every minute, offset after the interlock
//   - hothouse rules      every 5 minutes
//   - hothouse forecast   hourly
//
// Exit code 0 means an applied change or a clean no-op; 1 means the
// run failed and the next scheduled invocation should retry.
package main

import "os"

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
