package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockName is the lock file created next to Contents.json while a catalog is rewritten
const LockName = ".Contents.json.lock"

// ErrLocked is returned when another process holds the catalog lock
var ErrLocked = errors.New("catalog is locked by another process")

// Lock is an advisory lock on an asset set directory
type Lock struct {
	path string
	fl   *flock.Flock
}

// AcquireLock takes the catalog lock for dir without blocking
func AcquireLock(dir string) (*Lock, error) {
	path := filepath.Join(dir, LockName)
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrLocked)
	}

	slog.Debug("Acquired catalog lock", "path", path)
	return &Lock{path: path, fl: fl}, nil
}

// Release drops the lock and removes the lock file
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
