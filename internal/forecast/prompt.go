package forecast

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/infrastructure/config"
	"github.com/hothouse-systems/hothouse-core/internal/journal"
	"github.com/hothouse-systems/hothouse-core/internal/suncalc"
)

// defaultSystemPrompt is the built-in planning contract used when no
// prompt file is configured or the configured file cannot be read.
const defaultSystemPrompt = `You are the climate planning advisor for an automated greenhouse.
Use the get_sensors and get_status tools to observe current conditions
before planning. You cannot actuate anything yourself; you only propose
a plan, which a separate executor applies after its own safety checks.

Respond with a single JSON object:
{
  "summary": "one or two sentences on your reasoning",
  "actions": [
    {"execute_at": "RFC3339 timestamp", "channel": 1-8, "value": 0 or 1,
     "duration_sec": optional seconds, "reason": "short note"}
  ],
  "co2_advisory": "optional note",
  "dewpoint_risk": "optional note",
  "next_check_note": "optional note"
}

Channels 5-8 are side windows, channel 4 is irrigation. Value 1 opens
or starts, 0 closes or stops. Keep plans within the next hour. An empty
actions array is a valid plan when conditions need no intervention.`

// systemPrompt loads the prompt file, falling back to the built-in
// contract.
func (r *Runner) systemPrompt() string {
	if r.promptPath == "" {
		return defaultSystemPrompt
	}
	data, err := os.ReadFile(r.promptPath)
	if err != nil {
		r.logger.Warn("system prompt file unreadable, using built-in",
			"path", r.promptPath, "error", err)
		return defaultSystemPrompt
	}
	return string(data)
}

// userPrompt assembles the per-cycle planning context: clock, sun
// times, day period, temperature targets and the recent decision
// history.
func userPrompt(now time.Time, sun suncalc.Times, temps config.TemperatureConfig, history []journal.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current local time: %s (%s)\n", now.Format(time.RFC3339), sun.PeriodAt(now))
	fmt.Fprintf(&b, "Sunrise: %s  Sunset: %s\n",
		sun.Sunrise.Format("15:04"), sun.Sunset.Format("15:04"))
	fmt.Fprintf(&b, "Temperature targets: %.1f C day, %.1f C night\n",
		temps.TargetDay, temps.TargetNight)

	if len(history) == 0 {
		b.WriteString("\nNo prior planning decisions recorded.\n")
	} else {
		b.WriteString("\nRecent planning decisions, oldest first:\n")
		for _, e := range history {
			fmt.Fprintf(&b, "- [%s] %s", e.Timestamp.In(now.Location()).Format("2006-01-02 15:04"), e.Summary)
			if e.ActionsTaken != "" {
				fmt.Fprintf(&b, " (actions: %s)", e.ActionsTaken)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nObserve current conditions with the tools, then produce the plan for the coming hour.")
	return b.String()
}
