package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning 已有实例持有锁
var ErrAlreadyRunning = errors.New("another hog instance is already running")

// InstanceLock 单实例文件锁
type InstanceLock struct {
	path string
	lock *flock.Flock
}

// AcquireLock 非阻塞获取锁
func AcquireLock(path string) (*InstanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return &InstanceLock{path: path, lock: lock}, nil
}

// Path 锁文件路径
func (l *InstanceLock) Path() string { return l.path }

// Release 释放锁
func (l *InstanceLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
