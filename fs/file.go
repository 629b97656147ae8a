package fs

import (
	"io"
	"io/fs"
)

// File is an open handle within a Filesystem. Read and write behavior
// follows the standard library contracts; Read and ReadAt surface
// io.EOF unwrapped so callers can test for it directly.
type File interface {
	io.Closer
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Writer

	// Name returns the path the file was opened with.
	Name() string

	// Stat returns metadata for the open file.
	Stat() (fs.FileInfo, error)
}
