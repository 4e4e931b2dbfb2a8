package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/formwork/api"
)

func archivePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "project.db")
}

func TestArchive_SaveLoad(t *testing.T) {
	path := archivePath(t)
	files := map[string]string{
		"pages/home/index.tsx": "// view",
		"data/app.json":        "{}",
		"routes.ts":            "export const routes = [];\n",
	}
	require.NoError(t, SaveArchive(path, files))

	configs, err := LoadArchive(path)
	require.NoError(t, err)
	require.Len(t, configs, 3)

	// Ordered by filename, kinds recovered.
	assert.Equal(t, "data/app.json", configs[0].Filename)
	assert.Equal(t, api.KindData, configs[0].Kind)
	assert.Equal(t, "pages/home/index.tsx", configs[1].Filename)
	assert.Equal(t, api.KindView, configs[1].Kind)
	assert.Equal(t, "routes.ts", configs[2].Filename)
	assert.Equal(t, api.KindRoute, configs[2].Kind)
	assert.Equal(t, "// view", configs[1].Content)
}

func TestArchive_SaveReplacesPrevious(t *testing.T) {
	path := archivePath(t)
	require.NoError(t, SaveArchive(path, map[string]string{
		"pages/old.tsx": "// old",
		"routes.ts":     "export const routes = [];\n",
	}))
	require.NoError(t, SaveArchive(path, map[string]string{
		"pages/new.tsx": "// new",
	}))

	configs, err := LoadArchive(path)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "pages/new.tsx", configs[0].Filename)
	assert.Equal(t, "// new", configs[0].Content)
}

func TestArchive_Empty(t *testing.T) {
	path := archivePath(t)
	require.NoError(t, SaveArchive(path, nil))

	configs, err := LoadArchive(path)
	require.NoError(t, err)
	assert.Empty(t, configs)
}
