package journal

// Storage ceilings keep the journal compact; it feeds prompt context,
// not an audit system.
const (
	maxSummaryLen  = 500
	maxResponseLen = 2000
	maxSnapshotLen = 2000
)

// Truncate bounds each stored field to its ceiling. Returns the entry
// for chaining.
func (e *Entry) Truncate() *Entry {
	e.Summary = truncate(e.Summary, maxSummaryLen)
	e.RawResponse = truncate(e.RawResponse, maxResponseLen)
	e.SensorSnapshot = truncate(e.SensorSnapshot, maxSnapshotLen)
	return e
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
