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
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/proxy"
)

// FilterTable shows a filtered, sorted view of a data source with one
// filter control per filtered column and a status line.
type FilterTable struct {
	proxy    *proxy.TableFilterProxy
	table    *widget.Table
	controls *fyne.Container
	status   *widget.Label
	lastErr  error

	// syncs copy the proxy's filter state back into the boxes. OnChanged
	// handlers ignore the edits they make while syncing is set.
	syncs   []func()
	syncing bool
}

// NewFilterTable binds a table widget to p. The widget redraws whenever p
// is invalidated.
func NewFilterTable(p *proxy.TableFilterProxy) *FilterTable {
	ft := &FilterTable{
		proxy:    p,
		controls: container.NewHBox(),
		status:   widget.NewLabel(""),
	}
	ft.status.TextStyle = fyne.TextStyle{Italic: true}

	ft.table = widget.NewTable(
		func() (int, int) {
			return p.VisibleRowCount(), p.Source().ColumnCount()
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("template")
		},
		func(id widget.TableCellID, co fyne.CanvasObject) {
			label := co.(*widget.Label)
			v, err := p.VisibleCell(id.Row, id.Col)
			if err != nil {
				label.SetText("")
				return
			}
			label.SetText(v.Formatted)
		},
	)
	ft.table.ShowHeaderRow = true
	ft.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("", nil)
	}
	ft.table.UpdateHeader = func(id widget.TableCellID, co fyne.CanvasObject) {
		button := co.(*widget.Button)
		col := id.Col
		button.SetText(ft.headerText(col))
		button.OnTapped = func() { ft.CycleSort(col) }
	}
	for col := 0; col < p.Source().ColumnCount(); col++ {
		ft.table.SetColumnWidth(col, 140)
	}

	p.OnInvalidated(ft.refresh)
	ft.refresh()
	return ft
}

// Content returns the widget tree: controls on top, table, status below.
func (ft *FilterTable) Content() fyne.CanvasObject {
	return container.NewBorder(ft.controls, ft.status, nil, nil, ft.table)
}

// Proxy returns the proxy behind the table.
func (ft *FilterTable) Proxy() *proxy.TableFilterProxy {
	return ft.proxy
}

// Err returns the last rejected filter change since the view last changed.
func (ft *FilterTable) Err() error {
	return ft.lastErr
}

// Status returns the current status line.
func (ft *FilterTable) Status() string {
	return ft.status.Text
}

func (ft *FilterTable) headerText(col int) string {
	name, _ := ft.proxy.Source().ColumnName(col)
	state := ft.proxy.SortState()
	if state.Column != col {
		return name
	}
	switch state.Direction {
	case datatable.SortAscending:
		return name + " ↑"
	case datatable.SortDescending:
		return name + " ↓"
	default:
		return name
	}
}

func (ft *FilterTable) refresh() {
	ft.lastErr = nil
	ft.table.Refresh()
	ft.status.SetText(ft.proxy.Status())
	ft.syncControls()
}

// syncControls shows the current filters in the boxes, so a box never
// displays a bound the proxy dropped, e.g. after ClearAll or a query.
// Text that does not parse is left as typed.
func (ft *FilterTable) syncControls() {
	if ft.syncing {
		return
	}
	ft.syncing = true
	defer func() { ft.syncing = false }()
	for _, sync := range ft.syncs {
		sync()
	}
}

func (ft *FilterTable) syncNumber(entry *widget.Entry, want float64) {
	n, err := parseBound(entry.Text)
	if err != nil || n == want {
		return
	}
	if want == 0 {
		entry.SetText("")
		return
	}
	entry.SetText(strconv.FormatFloat(want, 'g', -1, 64))
}

func (ft *FilterTable) syncDate(entry *widget.Entry, want string) {
	text := strings.TrimSpace(entry.Text)
	if text == want {
		return
	}
	if _, err := time.Parse(datatable.DateLayout, text); err != nil && text != "" {
		return
	}
	entry.SetText(want)
}

// reportError shows a rejected filter change. The table keeps its previous
// filter, so only the status line changes.
func (ft *FilterTable) reportError(err error) {
	log.Printf("Filter change rejected: %v", err)
	ft.lastErr = err
	ft.status.SetText(fmt.Sprintf("Invalid filter: %v | %s", err, ft.proxy.Status()))
}

// CycleSort steps col through ascending, descending and unsorted.
func (ft *FilterTable) CycleSort(col int) {
	state := ft.proxy.SortState()
	next := datatable.SortAscending
	if state.Column == col {
		switch state.Direction {
		case datatable.SortAscending:
			next = datatable.SortDescending
		case datatable.SortDescending:
			next = datatable.SortNone
		}
	}
	if err := ft.proxy.SetSort(col, next); err != nil {
		ft.reportError(err)
	}
}

func (ft *FilterTable) addControl(label string, objects ...fyne.CanvasObject) {
	row := container.NewHBox(widget.NewLabel(label))
	for _, o := range objects {
		row.Add(container.NewGridWrap(fyne.NewSize(110, 36), o))
	}
	ft.controls.Add(row)
}

// AddRegexFilter adds a text box whose content filters col as a regular
// expression.
func (ft *FilterTable) AddRegexFilter(col int, label string) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("pattern")
	entry.Validator = func(s string) error {
		_, err := regexp.Compile(s)
		return err
	}
	entry.OnChanged = func(s string) {
		if ft.syncing {
			return
		}
		if err := ft.proxy.SetRegexFilter(col, s); err != nil {
			ft.reportError(err)
		}
	}
	ft.syncs = append(ft.syncs, func() {
		want, _ := ft.proxy.RegexPattern(col)
		if entry.Text == want {
			return
		}
		if _, err := regexp.Compile(entry.Text); err != nil {
			return
		}
		entry.SetText(want)
	})
	ft.addControl(label, entry)
	return entry
}

// AddNumberFilter adds min and max boxes filtering col by number range.
// An empty box resets its bound to 0, and a 0 bound shows as an empty box.
func (ft *FilterTable) AddNumberFilter(col int, label string) (min, max *widget.Entry) {
	min = widget.NewEntry()
	min.SetPlaceHolder("min")
	max = widget.NewEntry()
	max.SetPlaceHolder("max")

	min.OnChanged = func(s string) {
		if ft.syncing {
			return
		}
		n, err := parseBound(s)
		if err != nil {
			ft.reportError(err)
			return
		}
		if err := ft.proxy.SetNumberFilter(col, n, proxy.KeepBound); err != nil {
			ft.reportError(err)
		}
	}
	max.OnChanged = func(s string) {
		if ft.syncing {
			return
		}
		n, err := parseBound(s)
		if err != nil {
			ft.reportError(err)
			return
		}
		if err := ft.proxy.SetNumberFilter(col, proxy.KeepBound, n); err != nil {
			ft.reportError(err)
		}
	}
	ft.syncs = append(ft.syncs, func() {
		lo, hi, _ := ft.proxy.NumberBounds(col)
		ft.syncNumber(min, lo)
		ft.syncNumber(max, hi)
	})
	ft.addControl(label, min, max)
	return min, max
}

// AddDateFilter starts a date range on col with its default window and adds
// from and to boxes showing and editing it.
func (ft *FilterTable) AddDateFilter(col int, label string) (low, high *widget.Entry, err error) {
	if err := ft.proxy.SetDateFilter(col, time.Time{}, time.Time{}); err != nil {
		return nil, nil, err
	}
	from, to, _ := ft.proxy.DateBounds(col)

	low = widget.NewEntry()
	low.SetText(from.Format(datatable.DateLayout))
	high = widget.NewEntry()
	high.SetText(to.Format(datatable.DateLayout))

	low.OnChanged = func(s string) { ft.applyDate(col, s, true) }
	high.OnChanged = func(s string) { ft.applyDate(col, s, false) }
	ft.syncs = append(ft.syncs, func() {
		var wantLow, wantHigh string
		if from, to, ok := ft.proxy.DateBounds(col); ok {
			wantLow = from.Format(datatable.DateLayout)
			wantHigh = to.Format(datatable.DateLayout)
		}
		ft.syncDate(low, wantLow)
		ft.syncDate(high, wantHigh)
	})
	ft.addControl(label, low, high)
	return low, high, nil
}

// applyDate ignores partial input and reports complete but invalid dates.
func (ft *FilterTable) applyDate(col int, s string, isLow bool) {
	if ft.syncing {
		return
	}
	s = strings.TrimSpace(s)
	if len(s) < len(datatable.DateLayout) {
		return
	}
	d, err := time.Parse(datatable.DateLayout, s)
	if err != nil {
		ft.reportError(fmt.Errorf("%q is not a date (yyyy-mm-dd)", s))
		return
	}
	if isLow {
		err = ft.proxy.SetDateFilter(col, d, time.Time{})
	} else {
		err = ft.proxy.SetDateFilter(col, time.Time{}, d)
	}
	if err != nil {
		ft.reportError(err)
	}
}

// AddQueryBox adds a text box taking a filter query, applied on Enter.
// = is an exact text match; number columns take >= and <=.
func (ft *FilterTable) AddQueryBox() *widget.Entry {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("price >= 10 AND name ~ ^A")
	entry.OnSubmitted = func(s string) {
		parser := NewQueryParser(datatable.ColumnNames(ft.proxy.Source()))
		query, err := parser.ParseQuery(s)
		if err != nil {
			ft.reportError(err)
			return
		}
		if err := query.Apply(ft.proxy); err != nil {
			ft.reportError(err)
		}
	}
	ft.controls.Add(container.NewBorder(nil, nil, widget.NewLabel("Query"), nil, entry))
	return entry
}

var errNegativeBound = errors.New("bounds must not be negative")

func parseBound(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n < 0 {
		return 0, errNegativeBound
	}
	return n, nil
}
