// Package vcs provides sentinel errors for the repository operations
// preen performs. All errors can be checked using errors.Is().
package vcs

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned when repository options are missing or
// malformed.
var ErrInvalidOptions = errors.New("invalid repository options")

// ErrEmptyCommit is returned when a commit is requested but nothing is
// staged and empty commits were not allowed.
var ErrEmptyCommit = errors.New("no changes staged for commit")

// ErrBadCommitMessage is returned when a commit message fails
// conventional commit validation.
var ErrBadCommitMessage = errors.New("commit message is not a conventional commit")

// ErrNoUpstream is returned when a mirror operation is requested but no
// upstream URL is configured.
var ErrNoUpstream = errors.New("no upstream repository configured")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while
// preserving the ability to check against sentinel errors using
// errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
