package store

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/formwork/api"
)

func TestImportTree(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "proj/pages/home/index.tsx", []byte("// view"), 0o644))
	require.NoError(t, util.WriteFile(fs, "proj/data/app.json", []byte("{}"), 0o644))
	require.NoError(t, util.WriteFile(fs, "proj/routes.ts", []byte("export const routes = [];\n"), 0o644))
	require.NoError(t, util.WriteFile(fs, "proj/README.md", []byte("# ignored"), 0o644))
	require.NoError(t, util.WriteFile(fs, "proj/catalog.hcl", []byte("# ignored"), 0o644))

	configs, err := ImportTree(fs, "proj")
	require.NoError(t, err)

	var names []string
	for _, c := range configs {
		names = append(names, c.Filename)
	}
	assert.Equal(t, []string{"data/app.json", "pages/home/index.tsx", "routes.ts"}, names)

	assert.Equal(t, api.KindData, configs[0].Kind)
	assert.Equal(t, api.KindView, configs[1].Kind)
	assert.Equal(t, api.KindRoute, configs[2].Kind)
	assert.Equal(t, "export const routes = [];\n", configs[2].Content)
}

func TestImportTree_EmptyRoot(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("proj", 0o755))
	configs, err := ImportTree(fs, "proj")
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestExportTree(t *testing.T) {
	fs := memfs.New()
	files := map[string]string{
		"pages/home/index.tsx": "// view",
		"data/app.json":        "{}",
	}
	require.NoError(t, ExportTree(fs, "out", files))

	got, err := util.ReadFile(fs, "out/pages/home/index.tsx")
	require.NoError(t, err)
	assert.Equal(t, "// view", string(got))
	got, err = util.ReadFile(fs, "out/data/app.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}

func TestExportTree_RejectsEscapingNames(t *testing.T) {
	fs := memfs.New()
	err := ExportTree(fs, "out", map[string]string{"../evil.ts": "x"})
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	fs := memfs.New()
	files := map[string]string{
		"pages/home/index.tsx": "// view",
		"routes.ts":            "export const routes = [];\n",
	}
	require.NoError(t, ExportTree(fs, "proj", files))

	configs, err := ImportTree(fs, "proj")
	require.NoError(t, err)
	require.Len(t, configs, 2)
	back := make(map[string]string, len(configs))
	for _, c := range configs {
		back[c.Filename] = c.Content
	}
	assert.Equal(t, files, back)
}
