// Package config loads and validates Hothouse Core configuration.
//
// Configuration is read from a single YAML file, merged over hardcoded
// defaults, then overridden by HOTHOUSE_* environment variables. All four
// control layers load the same file; the control section is shared so the
// Rule Engine and Plan Executor agree on weather thresholds and channel
// assignments without duplicated constants.
package config
