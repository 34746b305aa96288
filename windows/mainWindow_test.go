package windows

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/dishledger/internal/config"
	"github.com/magpierre/dishledger/internal/store"
)

func openTestStore(t *testing.T, path string, seed bool) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, path)
	require.NoError(t, err)
	if !seed {
		return s
	}

	today := time.Now().Format("2006-01-02")
	stmts := []string{
		`INSERT INTO dish (id, name, price) VALUES (1, 'Apple pie', 15)`,
		`INSERT INTO dish (id, name, price) VALUES (2, 'Banana split', 9)`,
		`INSERT INTO dish_data (dish_id, date, sell_num) VALUES (1, '` + today + `', 3)`,
		`INSERT INTO dish_data (dish_id, date, sell_num) VALUES (2, '` + today + `', 5)`,
	}
	for _, stmt := range stmts {
		_, err := s.DB().ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	return s
}

func newTestMainWindow(t *testing.T) *MainWindow {
	t.Helper()
	a := test.NewTempApp(t)
	dir := t.TempDir()
	cfg := config.Config{
		DatabaseDSN:  filepath.Join(dir, "dishledger.db"),
		QueryTimeout: 5 * time.Second,
		ExportDir:    dir,
	}
	s := openTestStore(t, cfg.DatabaseDSN, true)

	mw, err := NewMainWindow(a, cfg, s)
	require.NoError(t, err)
	t.Cleanup(func() { mw.Close() })
	return mw
}

func TestMainWindowLoadsTables(t *testing.T) {
	mw := newTestMainWindow(t)

	assert.Len(t, mw.docTabs.Items, 2)
	assert.Equal(t, "Loaded 2 dishes and 2 sales records", mw.statusBar.Text)
	assert.Equal(t, mw.sales, mw.selectedTable())
	assert.Equal(t, 2, mw.dishes.Proxy().VisibleRowCount())
	assert.Equal(t, 2, mw.sales.Proxy().VisibleRowCount())
	assert.True(t, mw.sales.Proxy().SortState().IsSorted())

	assert.Equal(t, []string{"group:Tables"}, mw.nav.GetChildren(""))
	assert.Equal(t, []string{"table:dish", "table:dish_data"}, mw.nav.GetChildren("group:Tables"))
}

func TestMainWindowOpenTable(t *testing.T) {
	mw := newTestMainWindow(t)

	require.NoError(t, mw.OpenTable("dish_data"))
	require.Len(t, mw.docTabs.Items, 3)
	ft := mw.selectedTable()
	require.NotNil(t, ft)
	// Two dated rows plus the placeholder row of each dish.
	assert.Equal(t, 4, ft.Proxy().Source().RowCount())

	assert.Error(t, mw.OpenTable("missing"))
	assert.Len(t, mw.docTabs.Items, 3)
}

func TestMainWindowCloseKeepsDatabaseTabs(t *testing.T) {
	mw := newTestMainWindow(t)
	require.NoError(t, mw.OpenTable("dish"))

	for _, ti := range append(mw.docTabs.Items[:0:0], mw.docTabs.Items...) {
		mw.docTabs.CloseIntercept(ti)
	}
	assert.Len(t, mw.docTabs.Items, 2)
	assert.Len(t, mw.tabTables, 2)
}

func TestMainWindowClearFilters(t *testing.T) {
	mw := newTestMainWindow(t)
	require.NotEmpty(t, mw.sales.Proxy().FilteredColumns())

	mw.clearFilters()
	assert.Empty(t, mw.sales.Proxy().FilteredColumns())
	assert.Equal(t, "showing 2/2 rows | Sorted: date ↓", mw.statusBar.Text)
}

func TestMainWindowOpenDatabase(t *testing.T) {
	mw := newTestMainWindow(t)
	other := filepath.Join(t.TempDir(), "other.db")
	require.NoError(t, openTestStore(t, other, false).Close())

	require.NoError(t, mw.OpenDatabase(other))
	assert.Equal(t, other, mw.cfg.DatabaseDSN)
	assert.Equal(t, 0, mw.dishes.Proxy().Source().RowCount())
	assert.Len(t, mw.docTabs.Items, 2)

	assert.Error(t, mw.OpenDatabase(""))
	assert.Equal(t, other, mw.cfg.DatabaseDSN)
}
