// Package advisor implements the client side of the planning dialogue
// with an OpenAI-compatible chat completions service.
//
// The advisor is strictly consultative. It can observe the greenhouse
// through two read-only tools (get_sensors, get_status) and must return
// a plan as text; it has no tool that actuates hardware. The exchange
// is bounded by a tool round budget so a looping model cannot stall a
// planning run, and the first round forces a tool call so plans are
// always grounded in live readings rather than the model's priors.
package advisor
