package tests

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/formwork/internal/proto"
	"github.com/agentic-research/formwork/internal/source"
	"github.com/agentic-research/formwork/internal/store"
	"github.com/agentic-research/formwork/internal/workspace"
)

// testFixture bundles the shared state for integration tests: a project tree
// on an in-memory filesystem loaded into a workspace with a real catalog.
type testFixture struct {
	ws      *workspace.Workspace
	changes [][]string
}

const testCatalog = `component "Page" {
  kind             = "base"
  accepts_children = true
}

component "Card" {
  kind             = "base"
  accepts_children = true

  import {
    source = "antd"
  }

  prop "title" {
    type  = "string"
    group = "basic"
  }
}

component "Button" {
  kind = "base"

  import {
    source = "antd"
  }

  prop "type" {
    type    = "string"
    default = "primary"
    group   = "basic"
  }
}
`

const testHomeView = `import { Button } from 'antd';

export default function Home() {
  return (
    <Page title="Home">
      <Button type="primary">
        Get started
      </Button>
    </Page>
  );
}
`

// setup writes a project onto a memfs, imports it through the persistence
// boundary, and loads the HCL catalog, mirroring what the CLI does on start.
func setup(t *testing.T) *testFixture {
	t.Helper()

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "proj/pages/home/index.tsx", []byte(testHomeView), 0o644))
	require.NoError(t, util.WriteFile(fs, "proj/pages/about.tsx", nil, 0o644))
	require.NoError(t, util.WriteFile(fs, "proj/data/app.json", []byte(`{"app": {"name": "sample"}}`), 0o644))
	require.NoError(t, util.WriteFile(fs, "proj/routes.ts", []byte("export const routes = [];\n"), 0o644))

	configs, err := store.ImportTree(fs, "proj")
	require.NoError(t, err)

	ws := workspace.New()
	require.NoError(t, ws.AddFiles(configs))

	protos, err := proto.LoadCatalogSource("catalog.hcl", []byte(testCatalog))
	require.NoError(t, err)
	ws.SetComponentPrototypes(protos)

	fx := &testFixture{ws: ws}
	ws.OnFilesChange(func(names []string) { fx.changes = append(fx.changes, names) })
	return fx
}

func (fx *testFixture) rootOf(t *testing.T, name string) source.NodeID {
	t.Helper()
	f, err := fx.ws.GetFile(name)
	require.NoError(t, err)
	v, ok := f.View()
	require.True(t, ok)
	return v.Root().ID()
}

func (fx *testFixture) textOf(t *testing.T, name string) string {
	t.Helper()
	f, err := fx.ws.GetFile(name)
	require.NoError(t, err)
	return f.Text()
}

func TestIntegration_LoadedProject(t *testing.T) {
	fx := setup(t)

	assert.Equal(t, []string{"data/app.json", "pages/about.tsx", "pages/home/index.tsx", "routes.ts"},
		fx.ws.Filenames())
	assert.Equal(t, []string{"pages/about.tsx", "pages/home/index.tsx"}, fx.ws.Pages())
	assert.Equal(t, []string{"pages/home/index.tsx"}, fx.ws.DependentsOf("antd"))

	// The parsed home view round-trips to the text it was loaded from.
	assert.Equal(t, testHomeView, fx.textOf(t, "pages/home/index.tsx"))
}

func TestIntegration_EditSession(t *testing.T) {
	fx := setup(t)
	home := "pages/home/index.tsx"
	root := fx.rootOf(t, home)

	// Build: a Card under the page, a Button inside the Card.
	cardID, err := fx.ws.InsertNode(home, root, proto.ByName("Card"), source.Append())
	require.NoError(t, err)
	_, err = fx.ws.InsertNode(home, cardID, proto.ByName("Button"), source.Append())
	require.NoError(t, err)

	// Configure the Card through the selection path.
	require.NoError(t, fx.ws.Select(home, cardID))
	title := source.Str("Orders")
	require.NoError(t, fx.ws.UpdateSelectedNodeAttributes(map[string]*source.Value{"title": &title}))

	text := fx.textOf(t, home)
	assert.Contains(t, text, "import { Button, Card } from 'antd';")
	assert.Contains(t, text, `<Card title="Orders">`)

	// Three logical operations, three undos back to the pristine view.
	require.NoError(t, fx.ws.Undo())
	require.NoError(t, fx.ws.Undo())
	require.NoError(t, fx.ws.Undo())
	assert.Equal(t, testHomeView, fx.textOf(t, home))

	// And three redos forward again.
	require.NoError(t, fx.ws.Redo())
	require.NoError(t, fx.ws.Redo())
	require.NoError(t, fx.ws.Redo())
	assert.Equal(t, text, fx.textOf(t, home))
}

func TestIntegration_DragAcrossFiles(t *testing.T) {
	fx := setup(t)
	home := "pages/home/index.tsx"
	about := "pages/about.tsx"

	f, err := fx.ws.GetFile(home)
	require.NoError(t, err)
	v, _ := f.View()
	buttonID := v.Root().Children()[0].ID()

	require.NoError(t, fx.ws.StartDrag(home, buttonID))
	require.NoError(t, fx.ws.DropNode(about, fx.rootOf(t, about), source.Append()))

	assert.NotContains(t, fx.textOf(t, home), "<Button")
	aboutText := fx.textOf(t, about)
	assert.Contains(t, aboutText, "import { Button } from 'antd';")
	assert.Contains(t, aboutText, "Get started")

	// The origin keeps its import record; the target gains one.
	assert.Equal(t, []string{about, home}, fx.ws.DependentsOf("antd"))

	// The cross-file move is one undoable unit.
	require.NoError(t, fx.ws.Undo())
	assert.Equal(t, testHomeView, fx.textOf(t, home))
	assert.NotContains(t, fx.textOf(t, about), "Button")
}

func TestIntegration_ChangeNotifications(t *testing.T) {
	fx := setup(t)
	home := "pages/home/index.tsx"

	require.NoError(t, fx.ws.UpdateDataValue("data/app.json", "$.app.theme", "dark"))
	require.NoError(t, fx.ws.RenameFolder("pages/home", "pages/start"))

	require.Len(t, fx.changes, 2)
	assert.Equal(t, []string{"data/app.json"}, fx.changes[0])
	assert.Equal(t, []string{home, "pages/start/index.tsx"}, fx.changes[1])
}

func TestIntegration_ArchiveRoundTrip(t *testing.T) {
	fx := setup(t)
	home := "pages/home/index.tsx"
	root := fx.rootOf(t, home)
	_, err := fx.ws.InsertNode(home, root, proto.ByName("Card"), source.Append())
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "project.db")
	require.NoError(t, store.SaveArchive(dbPath, fx.ws.ListFiles()))

	configs, err := store.LoadArchive(dbPath)
	require.NoError(t, err)
	restored := workspace.New()
	require.NoError(t, restored.AddFiles(configs))

	assert.Equal(t, fx.ws.Filenames(), restored.Filenames())
	f, err := restored.GetFile(home)
	require.NoError(t, err)
	assert.Equal(t, fx.textOf(t, home), f.Text())
}

func TestIntegration_ExportAfterEdits(t *testing.T) {
	fx := setup(t)
	home := "pages/home/index.tsx"
	root := fx.rootOf(t, home)
	_, err := fx.ws.InsertNode(home, root, proto.ByName("Card"), source.Append())
	require.NoError(t, err)

	out := memfs.New()
	require.NoError(t, store.ExportTree(out, "proj", fx.ws.ListFiles()))

	data, err := util.ReadFile(out, "proj/pages/home/index.tsx")
	require.NoError(t, err)
	assert.Equal(t, fx.textOf(t, home), string(data))

	// Re-import lands on identical text: render is deterministic.
	configs, err := store.ImportTree(out, "proj")
	require.NoError(t, err)
	again := workspace.New()
	require.NoError(t, again.AddFiles(configs))
	f, err := again.GetFile(home)
	require.NoError(t, err)
	assert.Equal(t, fx.textOf(t, home), f.Text())
}

func TestIntegration_RecoveryFromInvalidEdit(t *testing.T) {
	fx := setup(t)
	home := "pages/home/index.tsx"
	before := fx.textOf(t, home)

	err := fx.ws.UpdateFile(home, "export default function {")
	require.ErrorIs(t, err, source.ErrParse)
	assert.Equal(t, before, fx.textOf(t, home), "a rejected edit leaves the file intact")

	// The workspace keeps working afterwards.
	_, err = fx.ws.InsertNode(home, fx.rootOf(t, home), proto.ByName("Card"), source.Append())
	require.NoError(t, err)
	assert.Contains(t, fx.textOf(t, home), "<Card")
}

func TestIntegration_DataEditing(t *testing.T) {
	fx := setup(t)

	require.NoError(t, fx.ws.UpdateDataValue("data/app.json", "$.app.theme", "dark"))
	require.NoError(t, fx.ws.UpdateDataValue("data/app.json", "$.features.search", true))

	f, err := fx.ws.GetFile("data/app.json")
	require.NoError(t, err)
	d, ok := f.Data()
	require.True(t, ok)
	got, err := d.Get("$.app.theme")
	require.NoError(t, err)
	assert.Equal(t, []any{"dark"}, got)

	require.NoError(t, fx.ws.Undo())
	// Undo replaced the parsed document; read through the file again.
	f, err = fx.ws.GetFile("data/app.json")
	require.NoError(t, err)
	d, _ = f.Data()
	got, err = d.Get("$.features.search")
	require.NoError(t, err)
	assert.Empty(t, got)
}
