package billy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
)

// File adapts a billy.File to the fs.File interface. Errors carry the
// operation and path; io.EOF passes through untouched.
type File struct {
	handle billy.File
	owner  *FS
}

// opError wraps a billy failure with the operation and file name.
func (f *File) opError(op string, err error) error {
	return fmt.Errorf("billy: %s %q: %w", op, f.handle.Name(), err)
}

// Name returns the path the file was opened with.
func (f *File) Name() string {
	return f.handle.Name()
}

func (f *File) Read(p []byte) (int, error) {
	n, err := f.handle.Read(p)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		return n, io.EOF
	default:
		return n, f.opError("read", err)
	}
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.handle.ReadAt(p, off)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		return n, io.EOF
	default:
		return n, f.opError("readat", err)
	}
}

func (f *File) Write(p []byte) (int, error) {
	n, err := f.handle.Write(p)
	if err != nil {
		return n, f.opError("write", err)
	}
	return n, nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	pos, err := f.handle.Seek(offset, whence)
	if err != nil {
		return pos, f.opError("seek", err)
	}
	return pos, nil
}

// Stat goes through the owning filesystem; billy file handles carry no
// metadata of their own.
func (f *File) Stat() (fs.FileInfo, error) {
	info, err := f.owner.Stat(f.handle.Name())
	if err != nil {
		return nil, f.opError("stat", err)
	}
	return info, nil
}

func (f *File) Close() error {
	if err := f.handle.Close(); err != nil {
		return f.opError("close", err)
	}
	return nil
}
