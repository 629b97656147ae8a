package sync

import (
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"github.com/prgm-dev/preen/fs"
)

// Stage copies a generator-output tree (any io/fs.FS, such as a mirror
// checkout subtree) into the staging directory of the working tree,
// replacing whatever was staged before.
func Stage(dest fs.Filesystem, src iofs.FS, root, stagingDir string) error {
	if stagingDir == "" {
		stagingDir = DefaultStagingDir
	}
	if root == "" {
		root = "."
	}

	if err := dest.RemoveAll(stagingDir); err != nil {
		return fmt.Errorf("sync: clear staging %q: %w", stagingDir, err)
	}

	walkErr := iofs.WalkDir(src, root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == root {
				return nil
			}
			// Skip nested git metadata when staging from a checkout.
			if d.Name() == ".git" {
				return iofs.SkipDir
			}
			return nil
		}

		rel := p
		if root != "." {
			rel = strings.TrimPrefix(rel, root+"/")
		}

		data, err := iofs.ReadFile(src, p)
		if err != nil {
			return fmt.Errorf("read %q: %w", p, err)
		}

		target := filepath.Join(stagingDir, filepath.FromSlash(rel))
		if dir := filepath.Dir(target); dir != "." {
			if mkErr := dest.MkdirAll(dir, 0o755); mkErr != nil {
				return fmt.Errorf("mkdir %q: %w", dir, mkErr)
			}
		}
		if wErr := dest.WriteFile(target, data, 0o644); wErr != nil {
			return fmt.Errorf("write %q: %w", target, wErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("sync: stage from %q: %w", root, walkErr)
	}

	return nil
}
