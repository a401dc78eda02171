package state

import "time"

// Emergency actions recorded in the lockout artifact.
const (
	ActionOpen  = "open"
	ActionClose = "close"
	ActionNone  = "none"
)

// LockoutState records whether the Emergency Interlock is currently
// suppressing all other layers.
//
// The state machine has exactly two states, Locked and Unlocked, with
// one transition trigger (an interlock fire writes a future LockedUntil)
// and one expiry condition (LockedUntil passes). Absence of the record
// means Unlocked; stale records expire by time comparison and are never
// explicitly deleted.
//
// Written only by the Emergency Interlock; read by every other layer at
// the start of each run.
type LockoutState struct {
	LockedUntil     *time.Time `json:"locked_until"`
	LastAction      string     `json:"last_action"`
	LastTemperature float64    `json:"last_temperature"`
	TriggeredAt     time.Time  `json:"triggered_at"`
}

// Locked reports whether the lockout is active at the given instant.
func (l LockoutState) Locked(now time.Time) bool {
	return l.LockedUntil != nil && now.Before(*l.LockedUntil)
}

// LoadLockout reads the lockout artifact. A missing or corrupt file
// reads as Unlocked; the error is returned alongside for logging.
func LoadLockout(store *Store) (LockoutState, error) {
	var lockout LockoutState
	ok, err := store.Load(lockoutFile, &lockout)
	if !ok {
		return LockoutState{LastAction: ActionNone}, err
	}
	return lockout, nil
}

// SaveLockout overwrites the lockout artifact. Called only by the
// Emergency Interlock after a triggered action.
func SaveLockout(store *Store, lockout LockoutState) error {
	return store.Save(lockoutFile, lockout)
}
