package runlock

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "rules.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("Release() error: %v", err)
	}
}

func TestAcquireHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interlock.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire() error: %v", err)
	}
	defer l.Release()

	if _, err := Acquire(path); !errors.Is(err, ErrHeld) {
		t.Errorf("second Acquire() error = %v, want ErrHeld", err)
	}
}

func TestAcquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "execute.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	l2, err := Acquire(path)
	if err != nil {
		t.Fatalf("re-Acquire() error: %v", err)
	}
	l2.Release()
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release() error: %v", err)
	}
}
