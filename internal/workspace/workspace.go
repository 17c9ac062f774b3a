// Package workspace manages the working directories of a project.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the project lock.
var ErrLocked = errors.New("workspace is locked by another process")

// CreateDirectories creates every directory that does not exist yet.
func CreateDirectories(logger *slog.Logger, dirs ...string) error {
	logger = orDiscard(logger)
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		logger.Info("created directory", "path", dir)
	}
	return nil
}

// DeleteDirectories removes directories with their content. Absent
// directories are ignored.
func DeleteDirectories(logger *slog.Logger, dirs ...string) error {
	logger = orDiscard(logger)
	for _, dir := range dirs {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("delete %s: %w", dir, err)
		}
		logger.Info("deleted directory", "path", dir)
	}
	return nil
}

// Lock acquires the project lock without blocking. The returned function
// releases it.
func Lock(path string) (unlock func() error, err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return lock.Unlock, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
