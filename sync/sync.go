// Package sync merges a staging tree of freshly generated files into the
// repository working tree. Paths named by the staging excludes are never
// overwritten, even when the generator produced them. The merge is
// planned first and then applied sequentially; there is no transactional
// guarantee, so an interrupted run leaves a partially merged tree.
package sync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prgm-dev/preen/fs"
)

// ErrNoStaging is returned when the staging directory does not exist.
var ErrNoStaging = errors.New("staging directory does not exist")

// DefaultStagingDir is the directory generators stage their output in.
const DefaultStagingDir = "owl-bot-staging"

// Options configures a sync run.
type Options struct {
	// StagingDir is the staging tree root, relative to the working tree
	// root. Defaults to DefaultStagingDir.
	StagingDir string

	// Excludes are the destination paths that must never be overwritten
	// by staged content.
	Excludes []string

	// DryRun plans the merge without writing anything.
	DryRun bool

	// KeepStaging leaves the staging tree in place after a successful
	// merge instead of removing it.
	KeepStaging bool
}

func (o *Options) applyDefaults() {
	if o.StagingDir == "" {
		o.StagingDir = DefaultStagingDir
	}
}

// Run merges the staging tree into the working tree rooted at fsys and
// returns the plan that was (or, in dry-run mode, would be) applied.
func Run(fsys fs.Filesystem, opts Options) (*Plan, error) {
	opts.applyDefaults()

	exists, err := fsys.Exists(opts.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("sync: stat staging %q: %w", opts.StagingDir, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNoStaging, opts.StagingDir)
	}

	plan, err := buildPlan(fsys, opts)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return plan, nil
	}

	if err := apply(fsys, opts, plan); err != nil {
		return plan, err
	}

	if !opts.KeepStaging {
		if err := fsys.RemoveAll(opts.StagingDir); err != nil {
			return plan, fmt.Errorf("sync: remove staging %q: %w", opts.StagingDir, err)
		}
	}

	return plan, nil
}

// buildPlan walks the staging tree and classifies every regular file.
func buildPlan(fsys fs.Filesystem, opts Options) (*Plan, error) {
	plan := &Plan{}

	walkErr := fsys.Walk(opts.StagingDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := stagingRel(opts.StagingDir, p)
		if err != nil {
			return err
		}

		if Excluded(rel, opts.Excludes) {
			plan.Ops = append(plan.Ops, FileOp{Path: rel, Kind: OpSkip})
			return nil
		}

		exists, err := fsys.Exists(rel)
		if err != nil {
			return err
		}
		kind := OpAdd
		if exists {
			kind = OpUpdate
		}
		plan.Ops = append(plan.Ops, FileOp{Path: rel, Kind: kind})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("sync: walk staging %q: %w", opts.StagingDir, walkErr)
	}

	return plan, nil
}

// apply copies every planned file from staging into the working tree.
func apply(fsys fs.Filesystem, opts Options, plan *Plan) error {
	for _, op := range plan.Ops {
		if op.Kind == OpSkip {
			continue
		}

		src := filepath.Join(opts.StagingDir, filepath.FromSlash(op.Path))
		data, err := fsys.ReadFile(src)
		if err != nil {
			return fmt.Errorf("sync: read staged %q: %w", src, err)
		}

		if dir := filepath.Dir(op.Path); dir != "." {
			if err := fsys.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("sync: mkdir %q: %w", dir, err)
			}
		}

		perm := os.FileMode(0o644)
		if info, statErr := fsys.Stat(src); statErr == nil {
			perm = info.Mode().Perm()
		}
		if err := fsys.WriteFile(op.Path, data, perm); err != nil {
			return fmt.Errorf("sync: write %q: %w", op.Path, err)
		}
	}
	return nil
}

// stagingRel converts a walked staging path into a destination path
// relative to the working tree root, in slash form.
func stagingRel(stagingDir, p string) (string, error) {
	rel, err := filepath.Rel(stagingDir, p)
	if err != nil {
		return "", fmt.Errorf("sync: rel %q: %w", p, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("sync: staged path %q escapes the working tree", p)
	}
	return rel, nil
}
