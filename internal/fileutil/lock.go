package fileutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// LockSuffix names the advisory lock file kept beside a score while it is
// rewritten.
const LockSuffix = ".lock"

// ErrLocked is returned when another process holds the lock for a file.
var ErrLocked = errors.New("file is locked by another process")

// Lock takes an exclusive advisory lock for path without blocking. The
// returned function releases the lock and removes the lock file.
func Lock(path string) (func() error, error) {
	lockPath := path + LockSuffix
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	return func() error {
		if err := lock.Unlock(); err != nil {
			return fmt.Errorf("release lock %s: %w", lockPath, err)
		}
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}, nil
}
