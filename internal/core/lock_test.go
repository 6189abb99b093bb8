package core

import (
	"errors"
	"testing"
)

func TestLockName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"chrome-Default", "chrome-default.lock"},
		{"chrome-Profile 1", "chrome-profile-1.lock"},
		{"edge-Work (old)", "edge-work--old-.lock"},
	}

	for _, tt := range tests {
		if got := lockName(tt.key); got != tt.want {
			t.Errorf("lockName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestWithLockRunsAndPropagates(t *testing.T) {
	dir := t.TempDir()

	ran := false
	if err := WithLock(dir, "chrome-Default", func() error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("WithLock: %v", err)
	}
	if !ran {
		t.Fatal("locked function never ran")
	}

	want := errors.New("inner failure")
	if err := WithLock(dir, "chrome-Default", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("WithLock error = %v, want inner failure", err)
	}
}

func TestWithLockHeldFailsFast(t *testing.T) {
	dir := t.TempDir()

	err := WithLock(dir, "chrome-Default", func() error {
		return WithLock(dir, "chrome-Default", func() error {
			t.Error("second lock acquired while first is held")
			return nil
		})
	})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("nested WithLock = %v, want ErrLocked", err)
	}
}

func TestWithLockDistinctKeys(t *testing.T) {
	dir := t.TempDir()

	err := WithLock(dir, "chrome-Default", func() error {
		return WithLock(dir, "chrome-Profile 1", func() error { return nil })
	})
	if err != nil {
		t.Fatalf("distinct keys contended: %v", err)
	}
}
