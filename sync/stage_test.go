package sync

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billyfs "github.com/prgm-dev/preen/fs/billy"
)

func TestStage(t *testing.T) {
	src := fstest.MapFS{
		"google/logging/v2/src/v2/client.ts": {Data: []byte("// client\n")},
		"google/logging/v2/package.json":     {Data: []byte("{}\n")},
		"google/other/ignored.ts":            {Data: []byte("// other\n")},
	}

	t.Run("copies the subtree into staging", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()

		require.NoError(t, Stage(memFS, src, "google/logging/v2", ""))

		got, err := memFS.ReadFile("owl-bot-staging/src/v2/client.ts")
		require.NoError(t, err)
		assert.Equal(t, "// client\n", string(got))

		exists, err := memFS.Exists("owl-bot-staging/package.json")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = memFS.Exists("owl-bot-staging/ignored.ts")
		require.NoError(t, err)
		assert.False(t, exists, "paths outside the subtree must not be staged")
	})

	t.Run("replaces previously staged content", func(t *testing.T) {
		memFS := billyfs.NewInMemoryFS()
		require.NoError(t, memFS.WriteFile("owl-bot-staging/stale.ts", []byte("stale\n"), 0o644))

		require.NoError(t, Stage(memFS, src, "google/logging/v2", ""))

		exists, err := memFS.Exists("owl-bot-staging/stale.ts")
		require.NoError(t, err)
		assert.False(t, exists, "stale staged files must be cleared")
	})
}
