// Package plan models the ControlPlan artifact: the only channel
// through which the Forecast Planner influences the other layers.
//
// A plan moves through three stages:
//
//  1. Payload — the untyped document extracted from the advisory
//     response, checked against a JSON schema for structural shape.
//  2. Validation — per-action bounds filtering (drop or clamp), which
//     yields well-typed actions marked pending.
//  3. Storage — one atomically-replaced JSON document; the planner
//     overwrites it wholesale, the executor mutates only each action's
//     executed mark.
//
// Unvalidated externally-sourced structures never reach the persisted
// plan.
package plan
