// Package runner sequences the preen pipeline: staging sync, template
// application, patch rules, and the optional commit of the result. The
// stages run in order with no retries; the first failure aborts the run
// and may leave the working tree partially updated.
package runner

import (
	"context"
	"os"

	"github.com/prgm-dev/preen/config"
	"github.com/prgm-dev/preen/errors"
	"github.com/prgm-dev/preen/fs"
	"github.com/prgm-dev/preen/patch"
	"github.com/prgm-dev/preen/sync"
	"github.com/prgm-dev/preen/templates"
	"github.com/prgm-dev/preen/vcs"
)

// Options configures a pipeline run.
type Options struct {
	// DryRun plans the sync and template stages without writing, and
	// skips the patch and commit stages entirely.
	DryRun bool

	// Commit stages and commits the result after a successful run.
	Commit bool

	// KeepStaging leaves the staging directory in place after the sync
	// stage consumes it. Watch mode needs this: removing the watched
	// directory would kill the watch.
	KeepStaging bool

	// Signature identifies the committer when Commit is set.
	Signature vcs.Signature
}

// Result reports what a pipeline run did.
type Result struct {
	// Plan is the staging sync plan that was (or would be) applied.
	Plan *sync.Plan

	// Templated lists the destination paths the template stage wrote.
	Templated []string

	// Patched is the total number of patch replacements made.
	Patched int

	// CommitSHA is the created commit, when one was requested and there
	// was something to commit.
	CommitSHA string
}

// Run executes the pipeline against the working tree rooted at fsys.
func Run(ctx context.Context, fsys fs.Filesystem, cfg *config.Config, opts Options) (*Result, error) {
	result := &Result{}

	plan, err := sync.Run(fsys, sync.Options{
		StagingDir:  cfg.Staging.Dir,
		Excludes:    cfg.Staging.Excludes,
		DryRun:      opts.DryRun,
		KeepStaging: opts.KeepStaging,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSyncFailed, "staging sync failed")
	}
	result.Plan = plan

	tmplOpts := templates.Options{
		Excludes: cfg.Templates.Excludes,
		Data: templates.Data{
			Name:          cfg.Repo.Name,
			DefaultBranch: cfg.Repo.DefaultBranch,
		},
		DryRun: opts.DryRun,
	}
	if cfg.Templates.Dir != "" {
		tmplOpts.Source = os.DirFS(cfg.Templates.Dir)
		tmplOpts.Root = "."
	}
	written, err := templates.Apply(fsys, tmplOpts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplateFailed, "template application failed")
	}
	result.Templated = written

	if opts.DryRun {
		return result, nil
	}

	patched, err := patch.ApplyAll(fsys, cfg.Patches)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePatchFailed, "patch stage failed")
	}
	result.Patched = patched

	if opts.Commit {
		sha, err := commit(ctx, fsys, cfg, opts)
		if err != nil {
			return nil, err
		}
		result.CommitSHA = sha
	}

	return result, nil
}

// commit stages everything the pipeline touched and commits it. A run
// that changed nothing is not an error; it just creates no commit.
func commit(ctx context.Context, fsys fs.Filesystem, cfg *config.Config, opts Options) (string, error) {
	repo, err := vcs.Open(ctx, &vcs.Options{FS: fsys})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeVCSFailed, "failed to open repository")
	}

	if err := repo.AddAll(ctx); err != nil {
		return "", errors.Wrap(err, errors.CodeVCSFailed, "failed to stage changes")
	}

	sha, err := repo.Commit(ctx, cfg.Commit.Message, opts.Signature, vcs.CommitOpts{
		Conventional: cfg.Commit.Conventional,
	})
	if err != nil {
		if errors.Is(err, vcs.ErrEmptyCommit) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.CodeVCSFailed, "failed to commit")
	}

	return sha, nil
}
