// Package journal persists the Forecast Planner's decision history.
//
// Every planning cycle appends one entry recording what the advisor
// said, which actions were accepted, and the sensor snapshot gathered
// during the exchange. The planner reads the most recent entries back
// to give the next cycle short-term memory. Long fields are truncated
// before storage so the journal stays a prompt-sized context source
// rather than a full audit log.
package journal
