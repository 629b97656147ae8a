// Package templates re-applies a shared template tree over a repository
// working tree. Paths named by the template excludes are exempt from
// regeneration. Files with a .tmpl suffix are rendered with
// text/template against repository metadata; everything else is copied
// verbatim.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/prgm-dev/preen/fs"
	"github.com/prgm-dev/preen/sync"
)

// ErrBadTemplate is returned when a .tmpl file fails to parse or render.
var ErrBadTemplate = errors.New("invalid template")

// TemplateSuffix marks files rendered with text/template. The suffix is
// stripped from the destination path.
const TemplateSuffix = ".tmpl"

// Data is the metadata available to template files.
type Data struct {
	// Name is the repository or package name.
	Name string

	// DefaultBranch is the repository's default branch.
	DefaultBranch string
}

// Options configures a template application run.
type Options struct {
	// Source is the template tree. Defaults to the embedded default set.
	Source iofs.FS

	// Root is the subdirectory of Source holding the templates.
	// Defaults to the embedded set's root.
	Root string

	// Excludes are the destination paths exempt from regeneration.
	Excludes []string

	// Data is passed to every rendered template.
	Data Data

	// DryRun reports what would be written without writing it.
	DryRun bool
}

func (o *Options) applyDefaults() {
	if o.Source == nil {
		o.Source = defaultSet
		o.Root = defaultRoot
	}
	if o.Root == "" {
		o.Root = "."
	}
}

// Apply lays the template tree over the working tree rooted at dest and
// returns the destination paths that were (or, in dry-run mode, would
// be) written. Excluded paths are reported nowhere; they are simply not
// touched.
func Apply(dest fs.Filesystem, opts Options) ([]string, error) {
	opts.applyDefaults()

	var written []string

	walkErr := iofs.WalkDir(opts.Source, opts.Root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := p
		if opts.Root != "" && opts.Root != "." {
			rel = strings.TrimPrefix(rel, opts.Root+"/")
		}
		target := strings.TrimSuffix(rel, TemplateSuffix)

		if sync.Excluded(target, opts.Excludes) {
			return nil
		}

		content, err := iofs.ReadFile(opts.Source, p)
		if err != nil {
			return fmt.Errorf("read template %q: %w", p, err)
		}

		if strings.HasSuffix(rel, TemplateSuffix) {
			content, err = render(rel, content, opts.Data)
			if err != nil {
				return err
			}
		}

		if !opts.DryRun {
			if dir := path.Dir(target); dir != "." {
				if mkErr := dest.MkdirAll(dir, 0o755); mkErr != nil {
					return fmt.Errorf("mkdir %q: %w", dir, mkErr)
				}
			}
			if wErr := dest.WriteFile(target, content, 0o644); wErr != nil {
				return fmt.Errorf("write %q: %w", target, wErr)
			}
		}
		written = append(written, target)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("templates: %w", walkErr)
	}

	return written, nil
}

// render executes a single template file against the run's Data.
func render(name string, content []byte, data Data) ([]byte, error) {
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %q: %v", ErrBadTemplate, name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: render %q: %v", ErrBadTemplate, name, err)
	}
	return buf.Bytes(), nil
}
