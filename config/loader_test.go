package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgm-dev/preen/errors"
	billyfs "github.com/prgm-dev/preen/fs/billy"
	"github.com/prgm-dev/preen/patch"
)

const sampleConfig = `version: 0.1.0
repo:
  name: nodejs-logging
  defaultBranch: main
staging:
  excludes:
    - .eslintignore
    - .prettierignore
    - src/index.ts
    - README.md
    - package.json
    - system-test/fixtures/sample/src/index.js
    - system-test/fixtures/sample/src/index.ts
templates:
  excludes:
    - src/index.ts
    - .eslintignore
    - .prettierignore
    - CONTRIBUTING.md
    - .github/auto-label.yaml
patches:
  - file: .trampolinerc
    pattern: 'required_envvars[^)]*\)'
    replace: 'required_envvars+=()'
  - file: .trampolinerc
    pattern: 'pass_down_envvars\+=\('
    replace: "pass_down_envvars+=(\n    \"ENVIRONMENT\"\n    \"RUNTIME\""
upstream:
  url: https://github.com/googleapis/googleapis-gen.git
  branch: main
  path: google/logging/v2
commit:
  message: "chore: sync generated sources"
  conventional: true
`

func writeConfig(t *testing.T, content string) *billyfs.FS {
	t.Helper()
	memFS := billyfs.NewInMemoryFS()
	require.NoError(t, memFS.WriteFile(DefaultFileName, []byte(content), 0o644))
	return memFS
}

func TestLoad(t *testing.T) {
	t.Run("loads a full configuration", func(t *testing.T) {
		memFS := writeConfig(t, sampleConfig)

		cfg, err := Load(memFS, DefaultFileName)
		require.NoError(t, err)

		assert.Equal(t, "0.1.0", cfg.Version)
		assert.Equal(t, "nodejs-logging", cfg.Repo.Name)
		assert.Len(t, cfg.Staging.Excludes, 7)
		assert.Contains(t, cfg.Staging.Excludes, "src/index.ts")
		assert.Len(t, cfg.Templates.Excludes, 5)
		assert.Contains(t, cfg.Templates.Excludes, ".github/auto-label.yaml")

		require.Len(t, cfg.Patches, 2)
		assert.Equal(t, ".trampolinerc", cfg.Patches[0].File)
		assert.Equal(t, `required_envvars[^)]*\)`, cfg.Patches[0].Pattern)
		assert.Equal(t, "pass_down_envvars+=(\n    \"ENVIRONMENT\"\n    \"RUNTIME\"", cfg.Patches[1].Replace)

		assert.Equal(t, "https://github.com/googleapis/googleapis-gen.git", cfg.Upstream.URL)
		assert.Equal(t, "google/logging/v2", cfg.Upstream.Path)
		assert.True(t, cfg.Commit.Conventional)
	})

	t.Run("applies defaults to a minimal configuration", func(t *testing.T) {
		memFS := writeConfig(t, "staging:\n  excludes: [README.md]\n")

		cfg, err := Load(memFS, DefaultFileName)
		require.NoError(t, err)

		assert.Equal(t, SupportedVersion, cfg.Version)
		assert.Equal(t, "owl-bot-staging", cfg.Staging.Dir)
		assert.Equal(t, "chore: sync generated sources", cfg.Commit.Message)
		assert.Equal(t, "main", cfg.Repo.DefaultBranch)
		assert.Equal(t, patch.TrampolineRules(), cfg.Patches)
	})

	t.Run("empty file loads a defaults-only configuration", func(t *testing.T) {
		memFS := writeConfig(t, "")

		cfg, err := Load(memFS, DefaultFileName)
		require.NoError(t, err)

		assert.Equal(t, SupportedVersion, cfg.Version)
		assert.Equal(t, "owl-bot-staging", cfg.Staging.Dir)
		assert.Equal(t, patch.TrampolineRules(), cfg.Patches)
	})

	t.Run("explicit empty patch list opts out of the built-in rules", func(t *testing.T) {
		memFS := writeConfig(t, "patches: []\n")

		cfg, err := Load(memFS, DefaultFileName)
		require.NoError(t, err)
		assert.Empty(t, cfg.Patches)
		assert.NotNil(t, cfg.Patches)
	})

	t.Run("missing file reports not found", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()

		_, err := Load(memFS, DefaultFileName)
		require.Error(t, err)
		assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		memFS := writeConfig(t, "version: 0.1.0\nbogus: true\n")

		_, err := Load(memFS, DefaultFileName)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})

	t.Run("skip validation loads a broken configuration", func(t *testing.T) {
		memFS := writeConfig(t, "version: 9.9.9\n")

		cfg, err := LoadWithOptions(memFS, DefaultFileName, LoadOptions{SkipValidation: true})
		require.NoError(t, err)
		assert.Equal(t, "9.9.9", cfg.Version)
	})
}
