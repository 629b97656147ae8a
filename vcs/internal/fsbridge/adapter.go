// Package fsbridge provides adapters between the preen filesystem
// abstraction and billy.Filesystem so git operations can work against
// the same tree the sync pipeline writes to.
package fsbridge

import (
	"fmt"

	"github.com/go-git/go-billy/v5"

	"github.com/prgm-dev/preen/fs"
	fsb "github.com/prgm-dev/preen/fs/billy"
)

// ToBillyFilesystem converts an fs.Filesystem to a billy.Filesystem.
// The passed filesystem must be a billy-backed FS from the fs/billy
// package; anything else is an error.
//
//nolint:ireturn // returns interface as required by billy.Filesystem
func ToBillyFilesystem(fsys fs.Filesystem) (billy.Filesystem, error) {
	billyFS, ok := fsys.(*fsb.FS)
	if !ok {
		return nil, fmt.Errorf("filesystem must be a billy FS from fs/billy, got %T", fsys)
	}
	return billyFS.Raw(), nil
}
