// Package patch applies literal find/replace rules to files in a working
// tree. A rule names a target file, a regular expression, and a
// replacement string; applying it rewrites every match in place.
package patch

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/prgm-dev/preen/fs"
)

// Sentinel errors checkable with errors.Is().

// ErrMissingTarget is returned when a rule's target file does not exist.
var ErrMissingTarget = errors.New("patch target does not exist")

// ErrBadPattern is returned when a rule's pattern fails to compile.
var ErrBadPattern = errors.New("invalid patch pattern")

// Rule is a single find/replace operation on a specific file.
type Rule struct {
	// File is the target path, relative to the working tree root.
	File string `yaml:"file"`

	// Pattern is an RE2 regular expression matched against the file's
	// content.
	Pattern string `yaml:"pattern"`

	// Replace is the replacement text. $ expansion follows
	// regexp.Regexp.ReplaceAll semantics.
	Replace string `yaml:"replace"`
}

// Compile compiles the rule's pattern.
func (r Rule) Compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, r.Pattern, err)
	}
	return re, nil
}

// Apply runs the rule against the working tree rooted at fsys. It returns
// the number of matches replaced. A rule whose pattern matches nothing
// leaves the file byte-identical and returns zero; that is not an error.
// A missing target file or an invalid pattern is.
func Apply(fsys fs.Filesystem, rule Rule) (int, error) {
	re, err := rule.Compile()
	if err != nil {
		return 0, err
	}

	exists, err := fsys.Exists(rule.File)
	if err != nil {
		return 0, fmt.Errorf("patch: stat %q: %w", rule.File, err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: %q", ErrMissingTarget, rule.File)
	}

	content, err := fsys.ReadFile(rule.File)
	if err != nil {
		return 0, fmt.Errorf("patch: read %q: %w", rule.File, err)
	}

	matches := re.FindAllIndex(content, -1)
	if len(matches) == 0 {
		return 0, nil
	}

	replaced := re.ReplaceAll(content, []byte(rule.Replace))
	if err := fsys.WriteFile(rule.File, replaced, permFor(fsys, rule.File)); err != nil {
		return 0, fmt.Errorf("patch: write %q: %w", rule.File, err)
	}

	return len(matches), nil
}

// ApplyAll runs the rules in order, stopping at the first failure.
// It returns the total number of replacements made.
func ApplyAll(fsys fs.Filesystem, rules []Rule) (int, error) {
	total := 0
	for i, rule := range rules {
		n, err := Apply(fsys, rule)
		if err != nil {
			return total, fmt.Errorf("patch: rule %d (%s): %w", i, rule.File, err)
		}
		total += n
	}
	return total, nil
}

// permFor preserves the target's existing mode where it can be read.
func permFor(fsys fs.Filesystem, path string) os.FileMode {
	if info, err := fsys.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}
