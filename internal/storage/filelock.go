package storage

import (
	"fmt"
	"os"
	"sync"
	"syscall"
)

// FileLock serializes read-modify-write spans within the process (mutex)
// and across processes (flock on a sidecar file).
type FileLock struct {
	path string
	mu   sync.Mutex
	file *os.File
}

func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

func (l *FileLock) Lock() error {
	l.mu.Lock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o640)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("open lock file %s: %w", l.path, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		l.mu.Unlock()
		return fmt.Errorf("flock %s: %w", l.path, err)
	}

	l.file = f
	return nil
}

func (l *FileLock) Unlock() {
	if l.file != nil {
		_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		_ = l.file.Close()
		l.file = nil
	}
	l.mu.Unlock()
}
