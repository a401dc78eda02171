package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors for artifact storage.
var (
	// ErrCorrupt indicates an artifact file exists but cannot be parsed.
	// Callers treat this as absence, but it is surfaced so runs can
	// log it.
	ErrCorrupt = errors.New("state: corrupt artifact")

	// ErrWriteFailed indicates an artifact could not be persisted.
	ErrWriteFailed = errors.New("state: write failed")
)

// Artifact file names under the state directory.
const (
	lockoutFile = "lockout_state.json"
	solarFile   = "solar_accumulator.json"
	runFile     = "rule_engine_state.json"
)

// Store persists the coordination artifacts as one JSON document each.
//
// Every write is atomic: the document is written to a temp file in the
// same directory and renamed over the target. Concurrency safety across
// processes follows from single-writer-per-artifact ownership plus this
// atomic replace; no file locks are needed.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the given directory.
// The directory is created on first write, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads an artifact into v.
//
// Returns:
//   - bool: false if the artifact does not exist
//   - error: ErrCorrupt if the file exists but cannot be decoded
func (s *Store) Load(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: reading %s: %w", ErrCorrupt, name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: decoding %s: %w", ErrCorrupt, name, err)
	}

	return true, nil
}

// Save writes an artifact atomically (temp file + rename).
func (s *Store) Save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrWriteFailed, name, err)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("%w: creating state dir: %w", ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrWriteFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %w", ErrWriteFailed, name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %w", ErrWriteFailed, name, err)
	}

	if err := os.Chmod(tmpName, 0o640); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: setting permissions on %s: %w", ErrWriteFailed, name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %w", ErrWriteFailed, name, err)
	}

	return nil
}
