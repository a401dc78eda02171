package suncalc

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// preDuskWindow is how long before sunset the gradual close begins.
const preDuskWindow = time.Hour

// Period buckets the day into the four control windows the Rule Engine
// and Forecast Planner reason about.
type Period string

const (
	// PeriodPreDawn is before sunrise: windows forced closed.
	PeriodPreDawn Period = "pre_dawn"

	// PeriodDaytime allows temperature-driven control.
	PeriodDaytime Period = "daytime"

	// PeriodPreDusk starts one hour before sunset: gradual close.
	PeriodPreDusk Period = "pre_dusk"

	// PeriodNight is after sunset: windows forced closed.
	PeriodNight Period = "night"
)

// Times holds the sun events for one local day.
type Times struct {
	Sunrise time.Time
	Sunset  time.Time
}

// Calculate returns sunrise and sunset for the calendar day of `at`,
// expressed in at's timezone.
//
// Parameters:
//   - latitude, longitude: site coordinates in decimal degrees
//   - at: reference instant; its date and location select the day
func Calculate(latitude, longitude float64, at time.Time) Times {
	rise, set := sunrise.SunriseSunset(latitude, longitude, at.Year(), at.Month(), at.Day())
	return Times{
		Sunrise: rise.In(at.Location()),
		Sunset:  set.In(at.Location()),
	}
}

// PeriodAt buckets an instant into its control window.
func (t Times) PeriodAt(now time.Time) Period {
	switch {
	case now.Before(t.Sunrise):
		return PeriodPreDawn
	case !now.Before(t.Sunset):
		return PeriodNight
	case !now.Before(t.Sunset.Add(-preDuskWindow)):
		return PeriodPreDusk
	default:
		return PeriodDaytime
	}
}

// Night reports whether the instant falls outside the sun-up window.
// Both pre-dawn and post-sunset count as night for window forcing.
func (t Times) Night(now time.Time) bool {
	return now.Before(t.Sunrise) || now.After(t.Sunset)
}
