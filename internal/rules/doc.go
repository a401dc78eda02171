// Package rules implements the Rule Engine, the reflex layer between
// the Emergency Interlock above it and the Forecast Planner below.
//
// Rules run in strict priority order on the five-minute grid: rain
// protection, windward wind protection, day-period windowing, the
// temperature band, then solar-proportional irrigation dosing. The
// first rule to claim a window channel wins the channel for that pass.
// When a valid plan exists the temperature band yields to it; the
// weather and irrigation rules never yield, since they encode safety
// and dosing the slower planner cannot react to in time.
package rules
