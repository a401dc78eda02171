package state

import "time"

// megajoulePerWattSecond converts W/m² × seconds to MJ/m².
const megajoulePerWattSecond = 1.0 / 1_000_000.0

// SolarAccumulator is the running solar dose state for proportional
// irrigation. Owned and mutated solely by the Rule Engine.
type SolarAccumulator struct {
	// Date is the accumulation day (YYYY-MM-DD, local time). The
	// accumulator resets whenever it no longer matches today.
	Date string `json:"date"`

	// AccumulatedMJ is the dose integrated since the last reset, MJ/m².
	AccumulatedMJ float64 `json:"accumulated_mj"`

	IrrigationsToday int        `json:"irrigations_today"`
	LastIrrigationAt *time.Time `json:"last_irrigation_at,omitempty"`
	LastUpdatedAt    time.Time  `json:"last_updated_at"`
}

// Add integrates one tick of solar irradiance into the dose.
//
// Parameters:
//   - irradiance: solar irradiance in W/m²
//   - tick: tick length in seconds
//
// Returns the dose contributed by this tick in MJ/m².
func (a *SolarAccumulator) Add(irradiance float64, tick int) float64 {
	dose := irradiance * float64(tick) * megajoulePerWattSecond
	a.AccumulatedMJ += dose
	return dose
}

// Triggered records an irrigation and resets the dose to zero.
func (a *SolarAccumulator) Triggered(now time.Time) {
	a.AccumulatedMJ = 0
	a.IrrigationsToday++
	t := now
	a.LastIrrigationAt = &t
}

// LoadSolarAccumulator reads the accumulator, resetting it if the
// stored date no longer matches the current local day. A missing or
// corrupt file also reads as a fresh accumulator.
func LoadSolarAccumulator(store *Store, now time.Time) (SolarAccumulator, error) {
	today := now.Format("2006-01-02")

	var acc SolarAccumulator
	ok, err := store.Load(solarFile, &acc)
	if !ok || acc.Date != today {
		return SolarAccumulator{Date: today}, err
	}
	return acc, nil
}

// SaveSolarAccumulator persists the accumulator, stamping the update time.
func SaveSolarAccumulator(store *Store, acc SolarAccumulator, now time.Time) error {
	acc.LastUpdatedAt = now
	return store.Save(solarFile, acc)
}
