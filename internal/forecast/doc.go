// Package forecast implements the Forecast Planner, the consultative
// layer that produces hourly plan documents.
//
// The planner never touches hardware. It runs a bounded advisory
// exchange, validates whatever comes back against the shared channel
// and duration limits, and writes a plan the executor applies on its
// own schedule. When either lockout is active the whole cycle is
// skipped: locked-out conditions must not be baked into an hour of
// forward guidance. Every cycle that reaches the advisor is recorded
// in the decision journal, plan or no plan.
package forecast
