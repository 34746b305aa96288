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
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	arrowadapter "github.com/magpierre/dishledger/adapters/arrow"
	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/proxy"
)

// ShowOpenFileDialog lets the user reopen an exported Parquet file.
func (t *MainWindow) ShowOpenFileDialog() {
	openDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if err := t.LoadParquetFile(path); err != nil {
			log.Printf("Failed to load %s: %v", path, err)
			t.SetStatus("Error loading file: " + err.Error())
			dialog.ShowError(err, t.w)
		}
	}, t.w)
	openDialog.SetFilter(storage.NewExtensionFileFilter([]string{".parquet"}))
	if dir, err := storageListable(t.cfg.ExportDir); err == nil {
		openDialog.SetLocation(dir)
	}
	openDialog.Show()
}

// LoadParquetFile opens filePath in a new tab with a filter control for
// every column.
func (t *MainWindow) LoadParquetFile(filePath string) error {
	if !strings.EqualFold(filepath.Ext(filePath), ".parquet") {
		return fmt.Errorf("unsupported file type %q", filepath.Ext(filePath))
	}
	t.SetStatus("Loading Parquet file: " + filepath.Base(filePath))

	ft, err := openParquet(filePath)
	if err != nil {
		return err
	}
	t.addTab(ft, filepath.Base(filePath))
	t.SetStatus(fmt.Sprintf("Loaded Parquet file: %s (%d rows, %d columns)",
		filepath.Base(filePath), ft.Proxy().Source().RowCount(), ft.Proxy().Source().ColumnCount()))
	return nil
}

func openParquet(filePath string) (*FilterTable, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	pf, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	defer pf.Close()

	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	source, err := arrowadapter.NewFromArrowTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow data source: %w", err)
	}

	return newTypedFilterTable(source)
}

// newTypedFilterTable builds a table whose sort rules and filter controls
// follow the column types of src.
func newTypedFilterTable(src datatable.DataSource) (*FilterTable, error) {
	opts := make([]proxy.Option, 0, src.ColumnCount())
	for col := 0; col < src.ColumnCount(); col++ {
		dt, err := src.ColumnType(col)
		if err != nil {
			return nil, err
		}
		opts = append(opts, proxy.WithColumnComparator(col, comparatorFor(dt)))
	}

	p, err := proxy.New(src, opts...)
	if err != nil {
		return nil, err
	}

	ft := NewFilterTable(p)
	for col := 0; col < src.ColumnCount(); col++ {
		name, _ := src.ColumnName(col)
		dt, _ := src.ColumnType(col)
		switch dt {
		case datatable.TypeInt, datatable.TypeFloat:
			ft.AddNumberFilter(col, name)
		case datatable.TypeDate:
			if _, _, err := ft.AddDateFilter(col, name); err != nil {
				return nil, err
			}
		case datatable.TypeString:
			ft.AddRegexFilter(col, name)
		}
	}
	ft.AddQueryBox()
	return ft, nil
}

func comparatorFor(dt datatable.DataType) datatable.Comparator {
	switch dt {
	case datatable.TypeInt, datatable.TypeFloat:
		return proxy.CompareNumber
	case datatable.TypeDate:
		return proxy.CompareDate
	default:
		return proxy.CompareText
	}
}

func storageListable(dir string) (fyne.ListableURI, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return storage.ListerForURI(storage.NewFileURI(abs))
}
