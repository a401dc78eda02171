// Package interlock implements the Emergency Interlock, the highest
// priority control layer.
//
// The interlock knows nothing about plans or rules. It reads one
// temperature, compares it against two bounds, and drives every window
// channel when a bound is breached. After a trigger it writes a
// cool-down record that both it and the layers below honour, so a
// single excursion does not hammer the actuators and the slower layers
// do not fight the emergency response.
package interlock
