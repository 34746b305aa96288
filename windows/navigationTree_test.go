package windows

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/dishledger/internal/store"
)

func TestNavigationTreeGroupsByKind(t *testing.T) {
	nt := NewNavigationTree()
	nt.SetObjects([]store.Object{
		{Name: "dish", Kind: "table"},
		{Name: "dish_data", Kind: "table"},
		{Name: "weekly:top", Kind: "view"},
	})

	assert.Equal(t, []string{"group:Tables", "group:Views"}, nt.GetChildren(""))
	assert.Equal(t, []string{"view:weekly:top"}, nt.GetChildren("group:Views"))
	assert.True(t, nt.IsBranch(""))
	assert.True(t, nt.IsBranch("group:Tables"))
	assert.False(t, nt.IsBranch("table:dish"))
	assert.False(t, nt.IsBranch("table:unknown"))
	assert.Empty(t, nt.GetChildren("table:unknown"))

	kind, name := nt.ParseNodeID("view:weekly:top")
	assert.Equal(t, NodeTypeView, kind)
	assert.Equal(t, "weekly:top", name)

	node := nt.GetNode("table:dish_data")
	require.NotNil(t, node)
	assert.Equal(t, "dish_data", node.Name)

	nt.SetObjects(nil)
	assert.Empty(t, nt.GetChildren(""))
}

func TestNavigationTreeWidgetOpensLeaves(t *testing.T) {
	test.NewTempApp(t)
	nt := NewNavigationTree()
	nt.SetObjects([]store.Object{
		{Name: "dish", Kind: "table"},
		{Name: "top_dishes", Kind: "view"},
	})

	var opened []string
	tree := nt.Widget(func(name string) { opened = append(opened, name) })
	assert.True(t, tree.IsBranchOpen("group:Tables"))

	tree.Select("group:Tables")
	tree.Select("view:top_dishes")
	tree.Select("table:dish")
	assert.Equal(t, []string{"top_dishes", "dish"}, opened)

	w := test.NewWindow(tree)
	defer w.Close()
	w.Resize(fyne.NewSize(300, 300))
}

func TestUpdateNodeDisplay(t *testing.T) {
	test.NewTempApp(t)
	nt := NewNavigationTree()
	nt.SetObjects([]store.Object{{Name: "dish", Kind: "table"}})

	label := widget.NewLabel("template")
	box := container.NewHBox(widget.NewIcon(nil), label)
	nt.UpdateNodeDisplay("table:dish", box, false)
	assert.Equal(t, "dish", label.Text)

	nt.UpdateNodeDisplay("table:missing", box, false)
	assert.Equal(t, "dish", label.Text)
}

func TestListDatabases(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.db", "a.SQLite", "notes.txt", ".hidden.db"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".cache"), 0o755))

	files, err := listDatabases(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive", ".hidden.db", "a.SQLite", "b.db"}, files)

	_, err = listDatabases(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
