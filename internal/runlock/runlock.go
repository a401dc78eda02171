package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld indicates another process of the same component is already
// running. Overlapping runs exit cleanly rather than queueing.
var ErrHeld = errors.New("runlock: already held")

// Lock is a non-blocking per-component file lock. Each control layer
// takes its own lock at startup so a slow run and its successor from
// the scheduler never execute concurrently.
type Lock struct {
	fl *flock.Flock
}

// Acquire attempts to take the component lock without blocking.
//
// Parameters:
//   - path: Lock file path, created along with its directory if absent
//
// Returns:
//   - *Lock: Held lock, release with Release
//   - error: ErrHeld if another process holds it, or a filesystem error
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrHeld, path)
	}

	return &Lock{fl: fl}, nil
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
