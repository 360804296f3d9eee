// Package fsutil holds the file primitives fix needs to rewrite route files:
// an atomic replace and a run lock so two fix runs never touch the same tree.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("another run holds the lock")

// AtomicWrite replaces path with data by writing a temp file next to it and
// renaming it into place. Readers see either the old or the new content.
func AtomicWrite(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tmp = nil
	return nil
}

type RunLock struct {
	flock *flock.Flock
	path  string
}

func NewRunLock(path string) *RunLock {
	return &RunLock{flock: flock.New(path), path: path}
}

// TryLock takes the lock without blocking. ErrLocked means another process
// already holds it.
func (l *RunLock) TryLock() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	if !acquired {
		return fmt.Errorf("%s: %w", l.path, ErrLocked)
	}
	return nil
}

// Release unlocks. The lock file stays on disk; removing it would let a
// waiter hold a lock on an unlinked inode while a new run locks a fresh file.
func (l *RunLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
