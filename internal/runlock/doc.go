// Package runlock guards single-shot control runs against overlap.
//
// Every layer runs as a short-lived scheduled process. If a run takes
// longer than its schedule interval, the next invocation must not pile
// up behind it; it detects the held lock and exits cleanly instead.
package runlock
