package state

import "time"

// RelayAction is one actuator command recorded in the run state.
type RelayAction struct {
	Channel     int    `json:"channel"`
	Value       int    `json:"value"`
	DurationSec int    `json:"duration_sec,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// RunState is the Rule Engine's last-evaluated snapshot, used to elide
// redundant actuator writes: a channel whose computed state matches the
// previous run's is not re-sent. Owned by the Rule Engine only.
type RunState struct {
	LastRunAt      time.Time     `json:"last_run_at"`
	TriggeredRules []string      `json:"triggered_rules"`
	RelayActions   []RelayAction `json:"relay_actions"`
}

// LastValue returns the value last sent to a channel, if any.
func (r RunState) LastValue(channel int) (int, bool) {
	for _, a := range r.RelayActions {
		if a.Channel == channel {
			return a.Value, true
		}
	}
	return 0, false
}

// LoadRunState reads the Rule Engine run state. Missing or corrupt
// files read as an empty state, forcing a full write-through run.
func LoadRunState(store *Store) (RunState, error) {
	var run RunState
	ok, err := store.Load(runFile, &run)
	if !ok {
		return RunState{}, err
	}
	return run, nil
}

// SaveRunState persists the Rule Engine run state.
func SaveRunState(store *Store, run RunState) error {
	return store.Save(runFile, run)
}
