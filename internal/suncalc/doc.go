// Package suncalc computes sunrise/sunset for the configured site and
// buckets the day into control windows (pre-dawn, daytime, pre-dusk,
// night). The Rule Engine uses the buckets for window forcing; the
// Forecast Planner injects them into the advisory prompt.
package suncalc
