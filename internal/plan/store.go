package plan

import (
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/state"
)

// planFile is the plan artifact name under the state directory.
const planFile = "current_plan.json"

// Load reads the current plan.
//
// Absent, corrupt and expired plans all read as nil: an expired plan is
// never authoritative and corrupt artifacts fall back to "no plan"
// (Rule Engine takes full authority). The error, when non-nil, is only
// for logging.
func Load(store *state.Store, now time.Time) (*Plan, error) {
	var p Plan
	ok, err := store.Load(planFile, &p)
	if !ok {
		return nil, err
	}
	if !p.Valid(now) {
		return nil, nil
	}
	return &p, nil
}

// Save atomically overwrites the plan document. The Forecast Planner
// calls this with a whole new plan each cycle; the Plan Executor calls
// it to persist execution marks on the current plan.
func Save(store *state.Store, p *Plan) error {
	return store.Save(planFile, p)
}
