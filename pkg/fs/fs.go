// Package fs is the filesystem layer under the store.
//
// The main types are:
//   - [FS]: the operations the store performs on database files
//   - [Real]: production implementation on top of [os]
//   - [Faulty]: test wrapper that fails chosen operations
//
// Every write to a database file goes through [FS.WriteFileAtomic], so a
// failed write leaves the previous content in place.
package fs

import (
	"os"
)

// Locker represents a held file lock.
// Call [Locker.Close] to release the lock.
//
// Example:
//
//	lock, err := fsys.Lock("databases/shop.db")
//	if err != nil {
//	    return err
//	}
//	defer lock.Close()
type Locker interface {
	Close() error
}

// FS defines the filesystem operations used by the store.
//
// Paths use OS semantics. Implementations must be safe for concurrent use.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces path with data in one step: readers see either
	// the old content or the new content, never a partial file.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// Lock takes an exclusive lock guarding path. The lock file lives in a
	// ".locks" directory next to path, so path itself may be replaced while
	// the lock is held.
	Lock(path string) (Locker, error)
}
