// Package fs defines the filesystem abstraction every other preen package
// operates through. Implementations may be OS-backed or entirely in
// memory, which keeps the sync, template, and patch pipelines testable
// without touching disk.
package fs

import (
	"os"
	"path/filepath"
)

// Filesystem is the set of operations preen needs from a filesystem.
// It mirrors a subset of the os package shaped for dependency injection.
type Filesystem interface {
	// Create creates or truncates the named file.
	Create(name string) (File, error)

	// Exists reports whether the named path exists.
	Exists(path string) (bool, error)

	// MkdirAll creates the named directory and any missing parents.
	MkdirAll(path string, perm os.FileMode) error

	// Open opens the named file for reading.
	Open(name string) (File, error)

	// OpenFile opens the named file with the given flag and permissions.
	OpenFile(name string, flag int, perm os.FileMode) (File, error)

	// ReadDir reads the named directory and returns its entries.
	ReadDir(dirname string) ([]os.FileInfo, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(path string) ([]byte, error)

	// Remove removes the named file or empty directory.
	Remove(name string) error

	// RemoveAll removes the named path and any children it contains.
	// A missing path is not an error.
	RemoveAll(path string) error

	// Stat returns file info for the named path.
	Stat(name string) (os.FileInfo, error)

	// TempDir creates a new temporary directory under dir with the given
	// prefix and returns its path.
	TempDir(dir, prefix string) (string, error)

	// Walk walks the file tree rooted at root, calling walkFn for each
	// file or directory, including root.
	Walk(root string, walkFn filepath.WalkFunc) error

	// WriteFile writes data to the named file, creating it if necessary.
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
