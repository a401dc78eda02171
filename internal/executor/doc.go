// Package executor implements the Plan Executor, the only layer that
// turns planner output into actuator writes.
//
// The planner schedules, the executor dispatches: this split keeps a
// single execution authority, so the advisory service can never drive
// hardware directly no matter what it returns. Each pass walks the
// current plan, dispatches actions whose time has come, suppresses
// window actions when live weather breaches the shared thresholds, and
// writes the terminal marks back into the plan document.
package executor
