package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process already holds the run lock.
var ErrLocked = errors.New("another run is in progress")

// WithRunLock takes an exclusive lock on path without waiting, runs fn, then
// releases. If the lock is held elsewhere it returns ErrLocked and fn is not run.
func WithRunLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	fileLock := flock.New(path)
	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring lock on %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("%w (lock held on %s)", ErrLocked, path)
	}
	defer fileLock.Unlock()

	return fn()
}
