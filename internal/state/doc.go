// Package state persists the small coordination artifacts the control
// layers share: the emergency lockout record, the solar dose
// accumulator, and the Rule Engine's run state.
//
// Each artifact is one JSON document with exactly one writer layer;
// cross-process safety follows from single-writer ownership plus atomic
// replace (temp file + rename), never locks. Absence or a corrupt file
// always reads as "no artifact" and triggers the documented fallback:
// no lockout, a fresh accumulator, an empty run state.
package state
