package suncalc

import (
	"testing"
	"time"
)

// Site used across tests: Eniwa, Hokkaido.
const (
	testLat = 42.888
	testLon = 141.603
)

func testJST() *time.Location {
	return time.FixedZone("JST", 9*3600)
}

func TestCalculate(t *testing.T) {
	// Late August at ~43°N: sunrise around 05:00, sunset around 18:20 JST.
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, testJST())

	times := Calculate(testLat, testLon, at)

	if times.Sunrise.Location() != at.Location() {
		t.Error("Sunrise not expressed in the reference timezone")
	}
	if !times.Sunrise.Before(times.Sunset) {
		t.Fatalf("Sunrise %v not before Sunset %v", times.Sunrise, times.Sunset)
	}
	if h := times.Sunrise.Hour(); h < 4 || h > 6 {
		t.Errorf("Sunrise hour = %d, want 4-6 JST", h)
	}
	if h := times.Sunset.Hour(); h < 17 || h > 19 {
		t.Errorf("Sunset hour = %d, want 17-19 JST", h)
	}
}

func TestPeriodAt(t *testing.T) {
	loc := testJST()
	times := Times{
		Sunrise: time.Date(2026, 8, 30, 5, 0, 0, 0, loc),
		Sunset:  time.Date(2026, 8, 30, 18, 20, 0, 0, loc),
	}

	tests := []struct {
		name string
		at   time.Time
		want Period
	}{
		{"before sunrise", time.Date(2026, 8, 30, 4, 30, 0, 0, loc), PeriodPreDawn},
		{"mid morning", time.Date(2026, 8, 30, 9, 0, 0, 0, loc), PeriodDaytime},
		{"one hour before sunset", time.Date(2026, 8, 30, 17, 20, 0, 0, loc), PeriodPreDusk},
		{"just before sunset", time.Date(2026, 8, 30, 18, 19, 0, 0, loc), PeriodPreDusk},
		{"at sunset", time.Date(2026, 8, 30, 18, 20, 0, 0, loc), PeriodNight},
		{"late evening", time.Date(2026, 8, 30, 22, 0, 0, 0, loc), PeriodNight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := times.PeriodAt(tt.at); got != tt.want {
				t.Errorf("PeriodAt(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}

func TestNight(t *testing.T) {
	loc := testJST()
	times := Times{
		Sunrise: time.Date(2026, 8, 30, 5, 0, 0, 0, loc),
		Sunset:  time.Date(2026, 8, 30, 18, 20, 0, 0, loc),
	}

	if !times.Night(time.Date(2026, 8, 30, 3, 0, 0, 0, loc)) {
		t.Error("Night() before sunrise = false, want true")
	}
	if times.Night(time.Date(2026, 8, 30, 12, 0, 0, 0, loc)) {
		t.Error("Night() at noon = true, want false")
	}
	if !times.Night(time.Date(2026, 8, 30, 19, 0, 0, 0, loc)) {
		t.Error("Night() after sunset = false, want true")
	}
}
