package templates

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billyfs "github.com/prgm-dev/preen/fs/billy"
)

// templateExcludes mirrors a typical generated client library's
// template-exempt paths.
var templateExcludes = []string{
	"src/index.ts",
	".eslintignore",
	".prettierignore",
	"CONTRIBUTING.md",
	".github/auto-label.yaml",
}

func TestApplyDefaultSet(t *testing.T) {
	t.Run("lays down the default templates", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()

		written, err := Apply(memFS, Options{
			Data: Data{Name: "nodejs-logging", DefaultBranch: "main"},
		})
		require.NoError(t, err)
		assert.Contains(t, written, ".trampolinerc")
		assert.Contains(t, written, "CONTRIBUTING.md")

		got, readErr := memFS.ReadFile("CONTRIBUTING.md")
		require.NoError(t, readErr)
		assert.Contains(t, string(got), "Fork the nodejs-logging repository.")
		assert.Contains(t, string(got), "off the `main` branch")
	})

	t.Run("excluded paths are exempt from regeneration", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()
		require.NoError(t, memFS.WriteFile("CONTRIBUTING.md", []byte("hand-written\n"), 0o644))
		require.NoError(t, memFS.WriteFile(".eslintignore", []byte("custom\n"), 0o644))

		written, err := Apply(memFS, Options{
			Excludes: templateExcludes,
			Data:     Data{Name: "x", DefaultBranch: "main"},
		})
		require.NoError(t, err)
		assert.NotContains(t, written, "CONTRIBUTING.md")
		assert.NotContains(t, written, ".eslintignore")
		assert.NotContains(t, written, ".github/auto-label.yaml")

		for path, want := range map[string]string{
			"CONTRIBUTING.md": "hand-written\n",
			".eslintignore":   "custom\n",
		} {
			got, readErr := memFS.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, want, string(got), "%s should be untouched", path)
		}

		exists, err := memFS.Exists(".github/auto-label.yaml")
		require.NoError(t, err)
		assert.False(t, exists, "excluded template must not be created either")
	})
}

func TestApplyCustomSource(t *testing.T) {
	source := fstest.MapFS{
		"tpl/README.md.tmpl": {Data: []byte("# {{.Name}}\n")},
		"tpl/static.txt":     {Data: []byte("verbatim {{not a template}}\n")},
		"tpl/sub/deep.txt":   {Data: []byte("nested\n")},
	}

	t.Run("renders tmpl files and copies the rest", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()

		written, err := Apply(memFS, Options{
			Source: source,
			Root:   "tpl",
			Data:   Data{Name: "preen"},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"README.md", "static.txt", "sub/deep.txt"}, written)

		got, readErr := memFS.ReadFile("README.md")
		require.NoError(t, readErr)
		assert.Equal(t, "# preen\n", string(got))

		got, readErr = memFS.ReadFile("static.txt")
		require.NoError(t, readErr)
		assert.Equal(t, "verbatim {{not a template}}\n", string(got))
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()

		written, err := Apply(memFS, Options{Source: source, Root: "tpl", DryRun: true})
		require.NoError(t, err)
		assert.Len(t, written, 3)

		exists, err := memFS.Exists("static.txt")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("excludes match the suffix-stripped destination", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()

		written, err := Apply(memFS, Options{
			Source:   source,
			Root:     "tpl",
			Excludes: []string{"README.md"},
		})
		require.NoError(t, err)
		assert.NotContains(t, written, "README.md")
	})

	t.Run("invalid template is an error", func(t *testing.T) {
		bad := fstest.MapFS{
			"tpl/broken.txt.tmpl": {Data: []byte("{{.Name")},
		}
		memFS := billyfs.NewInMemoryFS()

		_, err := Apply(memFS, Options{Source: bad, Root: "tpl"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBadTemplate), "unexpected error: %v", err)
	})
}
