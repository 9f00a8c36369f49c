package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const LockFileName = ".noveld.lock"

var ErrOutputLocked = errors.New("output directory is in use by another noveld run")

// OutputLock guards an output directory against concurrent exports.
type OutputLock struct {
	lock *flock.Flock
	path string
}

// EnsureDir creates dir when missing and reports whether it did.
func EnsureDir(dir string) (bool, error) {
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("cannot create output folder: %w", err)
	}

	return true, nil
}

func LockOutput(dir string) (*OutputLock, error) {
	path := filepath.Join(dir, LockFileName)
	l := flock.New(path)

	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrOutputLocked
	}

	return &OutputLock{lock: l, path: path}, nil
}

func (o *OutputLock) Unlock() error {
	if err := o.lock.Unlock(); err != nil {
		return err
	}

	return os.Remove(o.path)
}
