package plan

import "time"

// Mark is the tri-state execution record on a plan action. Transitions
// only run pending→done or pending→skipped_weather, never backward.
type Mark string

const (
	MarkPending        Mark = "pending"
	MarkDone           Mark = "done"
	MarkSkippedWeather Mark = "skipped_weather"
)

// Terminal reports whether the mark can no longer change.
func (m Mark) Terminal() bool {
	return m == MarkDone || m == MarkSkippedWeather
}

// Action is one scheduled actuator command inside a plan.
type Action struct {
	ExecuteAt   time.Time `json:"execute_at"`
	Channel     int       `json:"channel"`
	Value       int       `json:"value"`
	DurationSec int       `json:"duration_sec"`
	Reason      string    `json:"reason"`
	Executed    Mark      `json:"executed"`
}

// Due reports whether the action's scheduled time has passed.
func (a Action) Due(now time.Time) bool {
	return !now.Before(a.ExecuteAt)
}

// Plan is a time-boxed batch of proposed actuator actions produced by
// the Forecast Planner. The planner owns the whole document and always
// overwrites it wholesale; the Plan Executor mutates only the Executed
// field of individual actions.
type Plan struct {
	GeneratedAt time.Time `json:"generated_at"`
	ValidUntil  time.Time `json:"valid_until"`
	Summary     string    `json:"summary"`
	Actions     []Action  `json:"actions"`

	// Free-text advisories carried alongside the actions.
	CO2Advisory   string `json:"co2_advisory"`
	DewpointRisk  string `json:"dewpoint_risk"`
	NextCheckNote string `json:"next_check_note"`
}

// Valid reports whether the plan is still authoritative. An expired
// plan is treated as absent everywhere.
func (p *Plan) Valid(now time.Time) bool {
	return p != nil && !now.After(p.ValidUntil)
}
