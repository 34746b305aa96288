// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/export"
	"github.com/magpierre/dishledger/internal/config"
	"github.com/magpierre/dishledger/internal/store"
	"github.com/magpierre/dishledger/proxy"
)

// MainWindow shows the dish and sales tables of one database.
type MainWindow struct {
	a         fyne.App
	w         fyne.Window
	cfg       config.Config
	store     *store.Store
	docTabs   *container.DocTabs
	nav       *NavigationTree
	navTree   *widget.Tree
	dishes    *FilterTable
	sales     *FilterTable
	tabTables map[*container.TabItem]*FilterTable
	statusBar *widget.Label
}

// NewMainWindow builds the window and loads both tables from s.
func NewMainWindow(a fyne.App, cfg config.Config, s *store.Store) (*MainWindow, error) {
	t := &MainWindow{
		a:         a,
		cfg:       cfg,
		store:     s,
		tabTables: make(map[*container.TabItem]*FilterTable),
		nav:       NewNavigationTree(),
	}
	t.a.Settings().SetTheme(&LedgerTheme{})
	t.w = t.a.NewWindow("Dish Ledger")
	t.w.Resize(fyne.NewSize(1000, 700))

	t.statusBar = widget.NewLabel("Ready")
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}

	t.docTabs = container.NewDocTabs()
	t.docTabs.SetTabLocation(container.TabLocationBottom)
	t.docTabs.OnSelected = func(ti *container.TabItem) {
		if ft, ok := t.tabTables[ti]; ok {
			t.SetStatus(ft.Status())
		}
	}
	t.docTabs.CloseIntercept = func(ti *container.TabItem) {
		// The two database tabs stay open.
		if ft, ok := t.tabTables[ti]; ok && (ft == t.dishes || ft == t.sales) {
			return
		}
		delete(t.tabTables, ti)
		t.docTabs.Remove(ti)
	}

	if err := t.Reload(); err != nil {
		return nil, err
	}
	t.navTree = t.nav.Widget(func(name string) {
		if err := t.OpenTable(name); err != nil {
			log.Printf("Failed to open table %s: %v", name, err)
			dialog.ShowError(err, t.w)
		}
	})

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() {
			if err := t.Reload(); err != nil {
				log.Printf("Failed to reload tables: %v", err)
				dialog.ShowError(err, t.w)
			}
		}),
		widget.NewToolbarAction(theme.ContentClearIcon(), t.clearFilters),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.exportSelected),
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.ShowOpenFileDialog),
		widget.NewToolbarAction(theme.StorageIcon(), t.ShowDatabaseDialog),
	)
	split := container.NewHSplit(container.NewScroll(t.navTree), t.docTabs)
	split.Offset = 0.2
	t.w.SetContent(container.NewBorder(toolbar, t.statusBar, nil, nil, split))
	return t, nil
}

// ShowAndRun shows the window and runs the application loop.
func (t *MainWindow) ShowAndRun() {
	t.w.ShowAndRun()
}

// Close closes the database currently shown.
func (t *MainWindow) Close() error {
	return t.store.Close()
}

// SetStatus updates the status bar message
func (t *MainWindow) SetStatus(message string) {
	if t.statusBar != nil {
		t.statusBar.SetText(message)
	}
}

// Reload reads both tables again and rebuilds their views. Filters typed
// into the previous views are dropped.
func (t *MainWindow) Reload() error {
	ctx, cancel := createTimeoutContext(t.cfg.QueryTimeout)
	defer cancel()

	dishSource, err := t.store.Dishes(ctx, time.Now())
	if err != nil {
		return err
	}
	salesSource, err := t.store.Sales(ctx)
	if err != nil {
		return err
	}

	dishProxy, err := proxy.New(dishSource,
		proxy.WithColumnComparator(store.DishID, proxy.CompareNumber),
		proxy.WithColumnComparator(store.DishName, proxy.CompareText),
		proxy.WithColumnComparator(store.DishPrice, proxy.CompareNumber),
		proxy.WithColumnComparator(store.DishSoldWeek, proxy.CompareNumber),
		proxy.WithColumnComparator(store.DishRemarks, proxy.CompareText),
	)
	if err != nil {
		return err
	}
	salesProxy, err := proxy.New(salesSource,
		proxy.WithColumnComparator(store.SaleDishID, proxy.CompareNumber),
		proxy.WithColumnComparator(store.SaleDate, proxy.CompareDate),
		proxy.WithColumnComparator(store.SaleDishName, proxy.CompareText),
		proxy.WithColumnComparator(store.SalePrice, proxy.CompareNumber),
		proxy.WithColumnComparator(store.SaleSold, proxy.CompareNumber),
	)
	if err != nil {
		return err
	}

	dishes := NewFilterTable(dishProxy)
	dishes.AddRegexFilter(store.DishName, "Dish")
	dishes.AddNumberFilter(store.DishPrice, "Price")
	dishes.AddNumberFilter(store.DishSoldWeek, "Sold (7 days)")
	dishes.AddRegexFilter(store.DishRemarks, "Remarks")
	dishes.AddQueryBox()

	sales := NewFilterTable(salesProxy)
	if _, _, err := sales.AddDateFilter(store.SaleDate, "Date"); err != nil {
		return err
	}
	sales.AddRegexFilter(store.SaleDishName, "Dish")
	sales.AddNumberFilter(store.SalePrice, "Price")
	sales.AddNumberFilter(store.SaleSold, "Sold")
	sales.AddQueryBox()
	if err := salesProxy.SetSort(store.SaleDate, datatable.SortDescending); err != nil {
		return err
	}

	if err := t.nav.Load(ctx, t.store); err != nil {
		return err
	}
	if t.navTree != nil {
		t.navTree.Refresh()
	}

	t.replaceTab(t.dishes, dishes, "Dishes")
	t.replaceTab(t.sales, sales, "Sales")
	t.dishes, t.sales = dishes, sales
	t.SetStatus(fmt.Sprintf("Loaded %d dishes and %d sales records", dishSource.RowCount(), salesSource.RowCount()))
	return nil
}

// OpenTable shows every row of the table or view name in a new tab.
func (t *MainWindow) OpenTable(name string) error {
	ctx, cancel := createTimeoutContext(t.cfg.QueryTimeout)
	defer cancel()

	src, err := t.store.Table(ctx, name)
	if err != nil {
		return err
	}
	ft, err := newTypedFilterTable(src)
	if err != nil {
		return err
	}
	t.addTab(ft, name)
	t.SetStatus(fmt.Sprintf("Loaded %s (%d rows)", name, src.RowCount()))
	return nil
}

// ShowDatabaseDialog lets the user switch to another database.
func (t *MainWindow) ShowDatabaseDialog() {
	NewDatabaseDialog(t.w, filepath.Dir(t.cfg.DatabaseDSN), func(path string) {
		if err := t.OpenDatabase(path); err != nil {
			log.Printf("Failed to open database %s: %v", path, err)
			dialog.ShowError(err, t.w)
		}
	}).Show()
}

// OpenDatabase switches to the database at path. The current database
// stays open if path cannot be opened or loaded.
func (t *MainWindow) OpenDatabase(path string) error {
	ctx, cancel := createTimeoutContext(t.cfg.QueryTimeout)
	s, err := store.Open(ctx, path)
	cancel()
	if err != nil {
		return err
	}

	previous := t.store
	t.store = s
	if err := t.Reload(); err != nil {
		t.store = previous
		s.Close()
		return err
	}
	if err := previous.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
	t.cfg.DatabaseDSN = path
	t.w.SetTitle("Dish Ledger - " + filepath.Base(path))
	return nil
}

// replaceTab swaps the tab showing old for one showing ft.
func (t *MainWindow) replaceTab(old, ft *FilterTable, title string) {
	for ti, existing := range t.tabTables {
		if existing == old {
			delete(t.tabTables, ti)
			t.docTabs.Remove(ti)
		}
	}
	t.addTab(ft, title)
}

func (t *MainWindow) addTab(ft *FilterTable, title string) {
	ti := container.NewTabItem(title, ft.Content())
	t.tabTables[ti] = ft
	ft.Proxy().OnInvalidated(func() {
		if t.docTabs.Selected() == ti {
			t.SetStatus(ft.Status())
		}
	})
	t.docTabs.Append(ti)
	t.docTabs.Select(ti)
}

func (t *MainWindow) selectedTable() *FilterTable {
	if ti := t.docTabs.Selected(); ti != nil {
		return t.tabTables[ti]
	}
	return nil
}

func (t *MainWindow) clearFilters() {
	ft := t.selectedTable()
	if ft == nil {
		return
	}
	ft.Proxy().ClearAll()
}

// exportSelected saves the visible rows of the selected tab.
func (t *MainWindow) exportSelected() {
	ft := t.selectedTable()
	if ft == nil {
		dialog.ShowInformation("No Table", "Select a table to export", t.w)
		return
	}

	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		format, err := export.FormatFromPath(path)
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if err := export.Visible(ft.Proxy(), path, format); err != nil {
			log.Printf("Export failed: %v", err)
			dialog.ShowError(err, t.w)
			return
		}
		t.SetStatus(fmt.Sprintf("Exported %d rows to %s", ft.Proxy().VisibleRowCount(), filepath.Base(path)))
	}, t.w)

	saveDialog.SetFileName("sales.parquet")
	if dir, err := storageListable(t.cfg.ExportDir); err == nil {
		saveDialog.SetLocation(dir)
	}
	saveDialog.Show()
}
