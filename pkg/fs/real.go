package fs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// Real implements [FS] using the real filesystem.
//
// Most methods are passthroughs to [os]. The exceptions are
// [Real.WriteFileAtomic], which writes through a temp file and rename, and
// [Real.Lock], which uses flock(2).
type Real struct {
	// LockTimeout bounds how long [Real.Lock] waits. Zero means
	// [DefaultLockTimeout].
	LockTimeout time.Duration
}

// DefaultLockTimeout is used when [Real.LockTimeout] is zero.
const DefaultLockTimeout = 2 * time.Second

// LocksDir is the directory, next to each locked file, holding lock files.
const LocksDir = ".locks"

// ErrLockTimeout is returned when a lock cannot be acquired in time.
var ErrLockTimeout = errors.New("lock timeout")

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data to a temp file in the same directory and
// renames it over path. perm is applied to the new file.
func (r *Real) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}

	return os.Chmod(path, perm)
}

// A passthrough wrapper for [os.ReadDir].
func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// A passthrough wrapper for [os.MkdirAll].
func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// A passthrough wrapper for [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists checks if a file exists using [os.Stat].
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// A passthrough wrapper for [os.Remove].
func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

// --- Locking ---

const (
	lockPerms = 0o644
	dirPerms  = 0o755
)

// realLock holds an exclusive flock on a file under [LocksDir].
type realLock struct {
	file *os.File
}

func (l *realLock) Close() error {
	if l.file == nil {
		return nil
	}

	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	return errors.Join(unlockErr, closeErr)
}

// Lock acquires an exclusive lock for path, polling until the lock is free
// or [Real.LockTimeout] expires.
//
// The lock file is never removed: unlinking it while another process waits
// would let two holders lock different inodes. The inode check after flock
// covers a lock file replaced by hand.
func (r *Real) Lock(path string) (Locker, error) {
	timeout := r.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	locksDir := filepath.Join(filepath.Dir(path), LocksDir)
	lockPath := filepath.Join(locksDir, filepath.Base(path)+".lock")

	if err := os.MkdirAll(locksDir, dirPerms); err != nil {
		return nil, fmt.Errorf("creating locks dir: %w", err)
	}

	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	for {
		lock, err := tryLock(lockPath)
		if err == nil {
			return lock, nil
		}

		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, errInodeMismatch) {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %s after %s", ErrLockTimeout, path, timeout)
		}

		time.Sleep(min(backoff, remaining))
		backoff = min(backoff*2, 25*time.Millisecond)
	}
}

var errInodeMismatch = errors.New("lock file replaced")

func tryLock(lockPath string) (*realLock, error) {
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, lockPerms)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	fd := int(file.Fd())

	if err := flockRetryEINTR(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()

		return nil, err
	}

	var openStat, pathStat unix.Stat_t

	if err := unix.Fstat(fd, &openStat); err != nil {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = file.Close()

		return nil, fmt.Errorf("stat lock fd: %w", err)
	}

	if err := unix.Stat(lockPath, &pathStat); err != nil || pathStat.Ino != openStat.Ino || pathStat.Dev != openStat.Dev {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = file.Close()

		return nil, errInodeMismatch
	}

	return &realLock{file: file}, nil
}

// flockRetryEINTR wraps flock, retrying when a signal interrupts the call.
func flockRetryEINTR(fd int, how int) error {
	const maxRetries = 10000

	var err error
	for range maxRetries {
		err = unix.Flock(fd, how)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
