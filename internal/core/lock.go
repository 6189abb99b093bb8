package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danjacques/gofslock/fslock"
)

// ErrLocked is returned when another SiteMole instance holds the lock for
// the same profile.
var ErrLocked = errors.New("profile is locked by another instance")

// lockName turns an arbitrary key (browser id + profile name) into a safe
// lock file name.
func lockName(key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, key)
	return strings.ToLower(mapped) + ".lock"
}

// WithLock runs fn while holding an exclusive file lock for the given key
// under lockDir. A held lock fails immediately with ErrLocked rather than
// blocking.
func WithLock(lockDir, key string, fn func() error) error {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	path := filepath.Join(lockDir, lockName(key))
	err := fslock.With(path, fn)
	if errors.Is(err, fslock.ErrLockHeld) {
		return fmt.Errorf("%w (lock file %s)", ErrLocked, path)
	}
	return err
}
