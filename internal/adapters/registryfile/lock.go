package registryfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"docindex/internal/ports"
)

const (
	lockRetryInterval = 50 * time.Millisecond
	lockTimeout       = 5 * time.Second
	staleLockAge      = 10 * time.Minute
)

// FileLock is an advisory lock file guarding the registry's
// read-modify-write-persist cycle. One process owns the lock for the
// duration of a mutating batch; readers never take it.
type FileLock struct {
	path string
}

var _ ports.Locker = (*FileLock)(nil)

// NewFileLock creates a lock beside the registry file.
func NewFileLock(registryPath string) *FileLock {
	return &FileLock{path: registryPath + ".lock"}
}

// Acquire takes the lock, retrying until the timeout. A lock file older
// than staleLockAge is treated as abandoned and broken.
func (l *FileLock) Acquire() (func(), error) {
	// The lock is taken before the store's first Save, so on a fresh
	// root the registry directory may not exist yet.
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(lockTimeout)
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%s\n", strconv.Itoa(os.Getpid()))
			f.Close()
			return func() { os.Remove(l.path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if info, statErr := os.Stat(l.path); statErr == nil && time.Since(info.ModTime()) > staleLockAge {
			os.Remove(l.path)
			continue
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("registry locked by another process (lock file %s)", l.path)
		}
		time.Sleep(lockRetryInterval)
	}
}
