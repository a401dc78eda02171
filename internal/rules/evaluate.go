package rules

import (
	"fmt"
	"time"

	"github.com/hothouse-systems/hothouse-core/internal/gateway"
	"github.com/hothouse-systems/hothouse-core/internal/state"
	"github.com/hothouse-systems/hothouse-core/internal/suncalc"
)

// Graded vent movement: pulse length scales with how far the reading
// sits beyond the margin, bounded so one tick never slams a vent from
// end to end.
const (
	ventSecondsPerDegree = 20
	ventPulseFloor       = 10
	ventPulseCeiling     = 120

	// duskCloseFullSec is the total close travel spread across the
	// pre-dusk hour.
	duskCloseFullSec = 60
)

// Rule identifiers recorded in the run state and logs.
const (
	ruleRainClose       = "rain_close"
	ruleWindClose       = "wind_close"
	ruleNightClose      = "night_close"
	ruleDuskClose       = "dusk_close"
	ruleTempOpen        = "temp_open"
	ruleTempClose       = "temp_close"
	ruleSolarIrrigation = "solar_irrigation"
)

// evaluation is the outcome of one rule pass before dispatch.
type evaluation struct {
	actions   []state.RelayAction
	triggered []string
	irrigated bool
}

// evaluate runs the rules in strict priority order. Each window channel
// takes at most one action per pass: the first rule to claim a channel
// wins and lower-priority rules leave it alone. Rain short-circuits
// every other window rule; irrigation dosing always runs.
func (r *Runner) evaluate(snapshot gateway.SensorSnapshot, now time.Time, planActive bool, acc *state.SolarAccumulator) evaluation {
	var ev evaluation
	acted := map[int]bool{}
	weather := snapshot.Weather()
	windows := r.control.Temperature.WindowChannels

	claim := func(rule string, ch, value, duration int, reason string) {
		if acted[ch] {
			return
		}
		acted[ch] = true
		ev.actions = append(ev.actions, state.RelayAction{
			Channel: ch, Value: value, DurationSec: duration, Reason: reason,
		})
		if len(ev.triggered) == 0 || ev.triggered[len(ev.triggered)-1] != rule {
			ev.triggered = append(ev.triggered, rule)
		}
	}

	raining := weather.Rainfall > r.control.Rain.ThresholdMMH
	if raining {
		for _, ch := range windows {
			claim(ruleRainClose, ch, 0, 0, fmt.Sprintf("rain %.1f mm/h", weather.Rainfall))
		}
	} else {
		if weather.WindSpeedMS > r.control.Wind.StrongThresholdMS {
			for _, ch := range r.windwardChannels(weather.WindDirection) {
				claim(ruleWindClose, ch, 0, 0,
					fmt.Sprintf("wind %.1f m/s sector %d", weather.WindSpeedMS, weather.WindDirection))
			}
		}

		sun := suncalc.Calculate(r.latitude, r.longitude, now)
		switch sun.PeriodAt(now) {
		case suncalc.PeriodPreDawn, suncalc.PeriodNight:
			for _, ch := range windows {
				claim(ruleNightClose, ch, 0, 0, "outside sun-up window")
			}
		case suncalc.PeriodPreDusk:
			pulse := duskPulse(sun.Sunset, now)
			for _, ch := range windows {
				claim(ruleDuskClose, ch, 0, pulse, "pre-dusk close")
			}
		case suncalc.PeriodDaytime:
			if !planActive {
				r.temperatureBand(snapshot, claim)
			}
		}
	}

	r.irrigation(snapshot, now, acc, &ev)

	return ev
}

// temperatureBand applies graded open/close around the daytime target.
// Skipped entirely while a valid plan holds windowing authority.
func (r *Runner) temperatureBand(snapshot gateway.SensorSnapshot, claim func(rule string, ch, value, duration int, reason string)) {
	temp, ok := snapshot.Value(r.control.Sensors.Temperature)
	if !ok {
		r.logger.Warn("temperature source absent, skipping band control",
			"source", r.control.Sensors.Temperature)
		return
	}

	t := r.control.Temperature
	switch {
	case temp > t.TargetDay+t.MarginOpen:
		pulse := ventPulse(temp - (t.TargetDay + t.MarginOpen))
		for _, ch := range t.WindowChannels {
			claim(ruleTempOpen, ch, 1, pulse, fmt.Sprintf("temp %.1f above band", temp))
		}
	case temp < t.TargetDay-t.MarginClose:
		pulse := ventPulse((t.TargetDay - t.MarginClose) - temp)
		for _, ch := range t.WindowChannels {
			claim(ruleTempClose, ch, 0, pulse, fmt.Sprintf("temp %.1f below band", temp))
		}
	}
}

// irrigation advances the solar dose and fires one watering when the
// threshold is crossed.
func (r *Runner) irrigation(snapshot gateway.SensorSnapshot, now time.Time, acc *state.SolarAccumulator, ev *evaluation) {
	irradiance, ok := snapshot.Value(r.control.Sensors.Solar)
	if !ok {
		r.logger.Warn("solar source absent, skipping dose integration",
			"source", r.control.Sensors.Solar)
		return
	}

	cfg := r.control.Irrigation
	acc.Add(irradiance, cfg.TickSeconds)
	if acc.AccumulatedMJ < cfg.SolarThresholdMJ {
		return
	}

	ev.actions = append(ev.actions, state.RelayAction{
		Channel:     cfg.Channel,
		Value:       1,
		DurationSec: cfg.Duration,
		Reason:      fmt.Sprintf("solar dose %.2f MJ/m²", acc.AccumulatedMJ),
	})
	ev.triggered = append(ev.triggered, ruleSolarIrrigation)
	ev.irrigated = true
	acc.Triggered(now)
}

// windwardChannels maps a 1-16 compass sector to the exposed channel
// set. An unknown or unmapped sector closes every window.
func (r *Runner) windwardChannels(sector int) []int {
	w := r.control.Wind
	for _, s := range w.NorthSectors {
		if s == sector {
			return w.NorthChannels
		}
	}
	for _, s := range w.SouthSectors {
		if s == sector {
			return w.SouthChannels
		}
	}
	return r.control.Temperature.WindowChannels
}

// ventPulse grades vent travel by band deviation.
func ventPulse(deviation float64) int {
	pulse := ventPulseFloor + int(deviation*ventSecondsPerDegree)
	if pulse > ventPulseCeiling {
		return ventPulseCeiling
	}
	return pulse
}

// duskPulse spreads the close travel linearly across the hour before
// sunset.
func duskPulse(sunset, now time.Time) int {
	elapsed := now.Sub(sunset.Add(-time.Hour))
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= time.Hour {
		return duskCloseFullSec
	}
	return int(float64(duskCloseFullSec) * float64(elapsed) / float64(time.Hour))
}
