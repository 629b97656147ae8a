// Package vcs wraps the small set of go-git operations preen needs:
// opening the destination repository, staging synced paths, committing
// the result, and mirroring the upstream generator-output repository.
// All operations go through the project's filesystem abstraction.
package vcs

import (
	"context"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"

	"github.com/prgm-dev/preen/fs"
	"github.com/prgm-dev/preen/vcs/internal/fsbridge"
)

const (
	// DefaultStorerCacheSize is the default size for the LRU object cache.
	DefaultStorerCacheSize = 1000

	// DefaultWorkdir is the default worktree directory name.
	DefaultWorkdir = "."
)

// Options configures repository discovery and creation.
type Options struct {
	// FS is the REQUIRED filesystem root the repository lives in.
	FS fs.Filesystem

	// Workdir is the path within FS for the worktree root.
	// Defaults to "." (current directory in FS).
	Workdir string

	// StorerCacheSize sets the LRU object cache entries.
	// Defaults to DefaultStorerCacheSize.
	StorerCacheSize int
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidOptions, "FS is required")
	}
	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidOptions, "StorerCacheSize cannot be negative")
	}
	return nil
}

// applyDefaults sets default values for any unset fields in Options.
func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}
	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
}

// Repo represents the destination repository preen syncs into.
type Repo struct {
	repo     *git.Repository
	worktree *git.Worktree
	fs       fs.Filesystem
	options  Options
}

// Signature identifies the author/committer of a sync commit.
type Signature struct {
	Name  string
	Email string

	// When is the signature timestamp. Zero means time.Now().
	When time.Time
}

// CommitOpts configures commit creation behavior.
type CommitOpts struct {
	// AllowEmpty allows creating commits with no changes.
	AllowEmpty bool

	// Conventional validates the message as a conventional commit before
	// committing.
	Conventional bool
}

// Init creates a new non-bare repository at the options' workdir.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	return setup(ctx, opts, git.Init)
}

// Open opens an existing non-bare repository at the options' workdir.
// Both the .git directory and worktree must be present.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	return setup(ctx, opts, git.Open)
}

// setup wires storage and worktree the same way for Init and Open.
func setup(
	_ context.Context,
	opts *Options,
	build func(s storage.Storer, wt billy.Filesystem) (*git.Repository, error),
) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}

	opts.applyDefaults()

	billyFS, err := fsbridge.ToBillyFilesystem(opts.FS)
	if err != nil {
		return nil, WrapError(err, "filesystem conversion failed")
	}

	scopedFS, err := billyFS.Chroot(opts.Workdir)
	if err != nil {
		return nil, WrapErrorf(err, "failed to chroot to workdir %q", opts.Workdir)
	}

	dotGitFS, err := scopedFS.Chroot(".git")
	if err != nil {
		return nil, WrapError(err, "failed to access .git directory")
	}
	storage := fsbridge.NewStorage(dotGitFS, opts.StorerCacheSize)

	repo, err := build(storage, scopedFS)
	if err != nil {
		return nil, WrapError(err, "failed to set up repository")
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, WrapError(err, "failed to get worktree")
	}

	return &Repo{
		repo:     repo,
		worktree: worktree,
		fs:       opts.FS,
		options:  *opts,
	}, nil
}

// Add stages files in the worktree for the next commit. It supports glob
// patterns; files that don't exist are silently ignored, matching git
// add behavior.
func (r *Repo) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	billyFS, err := fsbridge.ToBillyFilesystem(r.fs)
	if err != nil {
		return WrapError(err, "failed to convert filesystem for glob operations")
	}

	workdirFS, err := billyFS.Chroot(r.options.Workdir)
	if err != nil {
		return WrapErrorf(err, "failed to chroot to workdir %q", r.options.Workdir)
	}

	var pathsToAdd []string
	for _, path := range paths {
		if path == "" {
			continue
		}

		if strings.ContainsAny(path, "*?[") {
			matches, globErr := util.Glob(workdirFS, path)
			if globErr != nil {
				return WrapErrorf(globErr, "invalid glob pattern %q", path)
			}
			pathsToAdd = append(pathsToAdd, matches...)
			continue
		}

		if info, statErr := workdirFS.Stat(path); statErr == nil && info != nil {
			pathsToAdd = append(pathsToAdd, path)
		}
		// Silently ignore non-existent files.
	}

	for _, path := range pathsToAdd {
		if _, err := r.worktree.Add(path); err != nil {
			return WrapErrorf(err, "failed to add path %q", path)
		}
	}

	return nil
}

// AddAll stages every modified and untracked file.
func (r *Repo) AddAll(ctx context.Context) error {
	if err := r.worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return WrapError(err, "failed to stage all changes")
	}
	return nil
}

// IsClean reports whether the worktree has no staged or unstaged changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return false, WrapError(err, "failed to get worktree status")
	}
	return status.IsClean(), nil
}

// Commit creates a new commit with the given message and signature and
// returns its SHA. With opts.Conventional the message must parse as a
// conventional commit.
func (r *Repo) Commit(ctx context.Context, msg string, who Signature, opts CommitOpts) (string, error) {
	if msg == "" {
		return "", WrapError(ErrInvalidOptions, "commit message cannot be empty")
	}
	if who.Name == "" || who.Email == "" {
		return "", WrapError(ErrInvalidOptions, "committer name and email are required")
	}

	if opts.Conventional {
		if err := ValidateMessage(msg); err != nil {
			return "", err
		}
	}

	status, err := r.worktree.Status()
	if err != nil {
		return "", WrapError(err, "failed to get worktree status")
	}

	stagedCount := 0
	for _, fileStatus := range status {
		if fileStatus.Staging != git.Untracked && fileStatus.Staging != git.Unmodified {
			stagedCount++
		}
	}
	if stagedCount == 0 && !opts.AllowEmpty {
		return "", WrapError(ErrEmptyCommit, "nothing to commit")
	}

	when := who.When
	if when.IsZero() {
		when = time.Now()
	}
	hash, err := r.worktree.Commit(msg, &git.CommitOptions{
		Author:            &object.Signature{Name: who.Name, Email: who.Email, When: when},
		Committer:         &object.Signature{Name: who.Name, Email: who.Email, When: when},
		AllowEmptyCommits: opts.AllowEmpty,
	})
	if err != nil {
		return "", WrapError(err, "failed to create commit")
	}

	return hash.String(), nil
}

// ValidateMessage checks that msg parses as a conventional commit.
func ValidateMessage(msg string) error {
	machine := parser.NewMachine(conventionalcommits.WithTypes(conventionalcommits.TypesConventional))
	if _, err := machine.Parse([]byte(msg)); err != nil {
		return WrapErrorf(ErrBadCommitMessage, "%q: %v", msg, err)
	}
	return nil
}
