package vcs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	billyfs "github.com/prgm-dev/preen/fs/billy"
)

// MirrorOptions configures mirroring of the upstream generator-output
// repository.
type MirrorOptions struct {
	// URL is the clone URL of the upstream repository.
	URL string

	// Branch is the branch to mirror. Empty means the remote HEAD.
	Branch string

	// CacheRoot is the directory mirrors are kept under. Defaults to
	// $XDG_CACHE_HOME/preen/mirrors.
	CacheRoot string

	// Depth limits history depth for the initial clone. Zero means a
	// shallow single-commit mirror, which is all the sync needs.
	Depth int
}

func (o *MirrorOptions) applyDefaults() {
	if o.CacheRoot == "" {
		o.CacheRoot = filepath.Join(xdg.CacheHome, "preen", "mirrors")
	}
	if o.Depth == 0 {
		o.Depth = 1
	}
}

// Mirror clones the upstream repository into the cache, or fast-forwards
// an existing mirror, and returns the mirror's worktree path on the OS
// filesystem.
func Mirror(ctx context.Context, opts MirrorOptions) (string, error) {
	if opts.URL == "" {
		return "", WrapError(ErrNoUpstream, "mirror requires a URL")
	}
	opts.applyDefaults()

	dir := filepath.Join(opts.CacheRoot, mirrorSlug(opts.URL))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", WrapErrorf(err, "failed to create mirror directory %q", dir)
	}

	mirrorFS := billyfs.NewOSFS(dir)
	exists, err := mirrorFS.Exists(".git")
	if err != nil {
		return "", WrapError(err, "failed to stat mirror")
	}

	if !exists {
		if err := clone(ctx, dir, opts); err != nil {
			return "", err
		}
		return dir, nil
	}

	if err := fastForward(ctx, dir, opts); err != nil {
		return "", err
	}
	return dir, nil
}

// clone performs the initial shallow clone of the upstream repository.
func clone(ctx context.Context, dir string, opts MirrorOptions) error {
	cloneOpts := &git.CloneOptions{
		URL:          opts.URL,
		Depth:        opts.Depth,
		SingleBranch: true,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, cloneOpts); err != nil {
		return WrapErrorf(err, "failed to clone %q", opts.URL)
	}
	return nil
}

// fastForward updates an existing mirror to the upstream tip.
func fastForward(ctx context.Context, dir string, opts MirrorOptions) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return WrapErrorf(err, "failed to open mirror %q", dir)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return WrapError(err, "failed to get mirror worktree")
	}

	pullOpts := &git.PullOptions{SingleBranch: true}
	if opts.Branch != "" {
		pullOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
	}

	err = worktree.PullContext(ctx, pullOpts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return WrapErrorf(err, "failed to update mirror %q", dir)
	}
	return nil
}

// mirrorSlug derives a stable directory name from a clone URL.
func mirrorSlug(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}
