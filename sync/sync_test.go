package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgm-dev/preen/fs"
	billyfs "github.com/prgm-dev/preen/fs/billy"
)

// stagingExcludes mirrors a typical generated client library's protected
// paths.
var stagingExcludes = []string{
	".eslintignore",
	".prettierignore",
	"src/index.ts",
	"README.md",
	"package.json",
	"system-test/fixtures/sample/src/index.js",
	"system-test/fixtures/sample/src/index.ts",
}

func setupStagedTree(t *testing.T) fs.Filesystem {
	t.Helper()
	memFS := billyfs.NewInMemoryFS()

	// Working tree before the sync.
	files := map[string]string{
		"src/index.ts":     "// hand-written exports\n",
		"README.md":        "# hand-written readme\n",
		"package.json":     "{\"name\": \"kept\"}\n",
		"src/v2/client.ts": "// old generated client\n",
	}
	// Generator output in staging, including files the excludes protect.
	staged := map[string]string{
		"owl-bot-staging/src/index.ts":      "// generated exports\n",
		"owl-bot-staging/README.md":         "# generated readme\n",
		"owl-bot-staging/package.json":      "{\"name\": \"generated\"}\n",
		"owl-bot-staging/src/v2/client.ts":  "// new generated client\n",
		"owl-bot-staging/src/v2/helpers.ts": "// new helper\n",
	}

	for path, content := range files {
		require.NoError(t, memFS.WriteFile(path, []byte(content), 0o644))
	}
	for path, content := range staged {
		require.NoError(t, memFS.WriteFile(path, []byte(content), 0o644))
	}
	return memFS
}

func TestRun(t *testing.T) {
	t.Run("excluded paths are never overwritten", func(t *testing.T) {
		memFS := setupStagedTree(t)

		_, err := Run(memFS, Options{Excludes: stagingExcludes})
		require.NoError(t, err)

		for path, want := range map[string]string{
			"src/index.ts": "// hand-written exports\n",
			"README.md":    "# hand-written readme\n",
			"package.json": "{\"name\": \"kept\"}\n",
		} {
			got, readErr := memFS.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, want, string(got), "%s should be untouched", path)
		}
	})

	t.Run("staged files land in the working tree", func(t *testing.T) {
		memFS := setupStagedTree(t)

		plan, err := Run(memFS, Options{Excludes: stagingExcludes})
		require.NoError(t, err)

		got, readErr := memFS.ReadFile("src/v2/client.ts")
		require.NoError(t, readErr)
		assert.Equal(t, "// new generated client\n", string(got))

		got, readErr = memFS.ReadFile("src/v2/helpers.ts")
		require.NoError(t, readErr)
		assert.Equal(t, "// new helper\n", string(got))

		assert.Equal(t, 2, plan.Changes())
		assert.ElementsMatch(t,
			[]string{"src/index.ts", "README.md", "package.json"},
			plan.Skipped())
	})

	t.Run("staging directory is removed after the merge", func(t *testing.T) {
		memFS := setupStagedTree(t)

		_, err := Run(memFS, Options{Excludes: stagingExcludes})
		require.NoError(t, err)

		exists, err := memFS.Exists(DefaultStagingDir)
		require.NoError(t, err)
		assert.False(t, exists, "staging directory should be removed")
	})

	t.Run("keep staging leaves the tree in place", func(t *testing.T) {
		memFS := setupStagedTree(t)

		_, err := Run(memFS, Options{Excludes: stagingExcludes, KeepStaging: true})
		require.NoError(t, err)

		exists, err := memFS.Exists(DefaultStagingDir)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		memFS := setupStagedTree(t)

		plan, err := Run(memFS, Options{Excludes: stagingExcludes, DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 2, plan.Changes())

		got, readErr := memFS.ReadFile("src/v2/client.ts")
		require.NoError(t, readErr)
		assert.Equal(t, "// old generated client\n", string(got))

		exists, err := memFS.Exists(DefaultStagingDir)
		require.NoError(t, err)
		assert.True(t, exists, "dry run must not remove staging")
	})

	t.Run("add and update are classified against the destination", func(t *testing.T) {
		memFS := setupStagedTree(t)

		plan, err := Run(memFS, Options{Excludes: stagingExcludes, DryRun: true})
		require.NoError(t, err)

		kinds := map[string]OpKind{}
		for _, op := range plan.Ops {
			kinds[op.Path] = op.Kind
		}
		assert.Equal(t, OpUpdate, kinds["src/v2/client.ts"])
		assert.Equal(t, OpAdd, kinds["src/v2/helpers.ts"])
		assert.Equal(t, OpSkip, kinds["src/index.ts"])
	})

	t.Run("missing staging directory is an error", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()

		_, err := Run(memFS, Options{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoStaging), "unexpected error: %v", err)
	})
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		excludes []string
		want     bool
	}{
		{"exact match", "src/index.ts", []string{"src/index.ts"}, true},
		{"no match", "src/v2/client.ts", []string{"src/index.ts"}, false},
		{"directory prefix protects children", "docs/guide/intro.md", []string{"docs"}, true},
		{"prefix must be a path segment", "docs-extra/file.md", []string{"docs"}, false},
		{"glob pattern", "samples/quickstart.js", []string{"samples/*.js"}, true},
		{"empty excludes", "anything", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excluded(tt.rel, tt.excludes))
		})
	}
}
