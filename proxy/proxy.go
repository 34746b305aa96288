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

// Package proxy filters and sorts the rows of a datatable.DataSource for
// presentation without touching the source.
//
// A TableFilterProxy holds at most one filter per column: a number range, a
// regular expression or a date range. A row is visible when every filter
// accepts its cell. The active filter of a column also decides how that
// column sorts.
//
// The proxy is not safe for concurrent use. Drive it from the goroutine that
// owns the presentation, typically the UI event loop.
package proxy

import (
	"fmt"
	"regexp"
	"time"

	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/internal/filter"
)

// KeepBound leaves one side of a number range unchanged in SetNumberFilter.
const KeepBound = -1.0

// TableFilterProxy is a filtered, sorted view over a data source.
type TableFilterProxy struct {
	source  datatable.DataSource
	filters *filter.Set

	comparators       map[int]datatable.Comparator
	defaultComparator datatable.Comparator
	numberPolicy      filter.MalformedPolicy
	datePolicy        filter.MalformedPolicy
	now               func() time.Time

	sortState datatable.SortState
	observers []func()

	// visible caches the source indices of visible rows in view order.
	// nil means the cache is stale.
	visible []int
}

// New creates a proxy over source with no filters and no sorting.
func New(source datatable.DataSource, opts ...Option) (*TableFilterProxy, error) {
	if source == nil {
		return nil, datatable.ErrNoDataSource
	}

	p := &TableFilterProxy{
		source:       source,
		filters:      filter.NewSet(),
		comparators:  make(map[int]datatable.Comparator),
		numberPolicy: filter.FailOpen,
		datePolicy:   filter.FailClosed,
		now:          time.Now,
		sortState:    datatable.SortState{Column: -1, Direction: datatable.SortNone},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Source returns the wrapped data source.
func (p *TableFilterProxy) Source() datatable.DataSource {
	return p.source
}

func (p *TableFilterProxy) checkColumn(col int) error {
	if col < 0 || col >= p.source.ColumnCount() {
		return fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return nil
}

// SetNumberFilter merges min and max into the number range of col and makes
// it the active filter of that column. Either bound may be KeepBound to keep
// its current value; a new range starts at (0, 0). A range whose max is not
// above its min lets every row through.
func (p *TableFilterProxy) SetNumberFilter(col int, min, max float64) error {
	if err := p.checkColumn(col); err != nil {
		return err
	}

	f := filter.Upsert(p.filters, col, func() *filter.NumberRange {
		return &filter.NumberRange{Policy: p.numberPolicy}
	})
	if min != KeepBound {
		f.Min = min
	}
	if max != KeepBound {
		f.Max = max
	}
	p.Invalidate()
	return nil
}

// SetRegexFilter compiles pattern and makes it the active filter of col.
// A pattern that does not compile leaves the column's filter as it was.
func (p *TableFilterProxy) SetRegexFilter(col int, pattern string) error {
	if err := p.checkColumn(col); err != nil {
		return err
	}

	f, err := filter.NewRegexMatch(pattern)
	if err != nil {
		return err
	}
	p.filters.Put(col, f)
	p.Invalidate()
	return nil
}

// SetRegexFilterCompiled makes re the active filter of col.
func (p *TableFilterProxy) SetRegexFilterCompiled(col int, re *regexp.Regexp) error {
	if err := p.checkColumn(col); err != nil {
		return err
	}
	if re == nil {
		return fmt.Errorf("%w: nil pattern", datatable.ErrInvalidPattern)
	}

	p.filters.Put(col, &filter.RegexMatch{Pattern: re})
	p.Invalidate()
	return nil
}

// SetDateFilter merges low and high into the date range of col and makes it
// the active filter of that column. A zero time keeps that side unchanged;
// a new range starts as [today-7, today]. Times of day are ignored.
func (p *TableFilterProxy) SetDateFilter(col int, low, high time.Time) error {
	if err := p.checkColumn(col); err != nil {
		return err
	}

	f := filter.Upsert(p.filters, col, func() *filter.DateRange {
		return filter.NewDateRange(p.now(), p.datePolicy)
	})
	if !low.IsZero() {
		f.Low = filter.Day(low)
	}
	if !high.IsZero() {
		f.High = filter.Day(high)
	}
	p.Invalidate()
	return nil
}

// ClearFilter removes the filter of col, if any.
func (p *TableFilterProxy) ClearFilter(col int) error {
	if err := p.checkColumn(col); err != nil {
		return err
	}
	if p.filters.Delete(col) {
		p.Invalidate()
	}
	return nil
}

// ClearAll removes every filter.
func (p *TableFilterProxy) ClearAll() {
	p.filters.Clear()
	p.Invalidate()
}

// Filter returns the method active on col.
func (p *TableFilterProxy) Filter(col int) (datatable.FilterMethod, bool) {
	f, ok := p.filters.Get(col)
	if !ok {
		return datatable.MethodNone, false
	}
	return f.Method(), true
}

// NumberBounds returns the number range of col, if that is its filter.
func (p *TableFilterProxy) NumberBounds(col int) (min, max float64, ok bool) {
	f, _ := p.filters.Get(col)
	r, ok := f.(*filter.NumberRange)
	if !ok {
		return 0, 0, false
	}
	return r.Min, r.Max, true
}

// DateBounds returns the date range of col, if that is its filter.
func (p *TableFilterProxy) DateBounds(col int) (low, high time.Time, ok bool) {
	f, _ := p.filters.Get(col)
	r, ok := f.(*filter.DateRange)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return r.Low, r.High, true
}

// RegexPattern returns the pattern of col, if a regex match is its filter.
func (p *TableFilterProxy) RegexPattern(col int) (string, bool) {
	f, _ := p.filters.Get(col)
	r, ok := f.(*filter.RegexMatch)
	if !ok || r.Pattern == nil {
		return "", false
	}
	return r.Pattern.String(), true
}

// FilteredColumns returns the columns with an active filter, ascending.
func (p *TableFilterProxy) FilteredColumns() []int {
	return p.filters.Columns()
}

// Describe renders the active filters for a status line.
func (p *TableFilterProxy) Describe() string {
	return p.filters.Description(datatable.ColumnNames(p.source))
}

// OnInvalidated registers fn to run after every change that can alter the
// visible rows or their order. fn runs synchronously on the caller's
// goroutine.
func (p *TableFilterProxy) OnInvalidated(fn func()) {
	if fn != nil {
		p.observers = append(p.observers, fn)
	}
}

// Invalidate drops the cached view and notifies observers. Call it after
// the source data changes.
func (p *TableFilterProxy) Invalidate() {
	p.visible = nil
	for _, fn := range p.observers {
		fn()
	}
}

// RowVisible reports whether source row passes every active filter.
// Rows outside the source are never visible.
func (p *TableFilterProxy) RowVisible(row int) bool {
	if row < 0 || row >= p.source.RowCount() {
		return false
	}
	return p.filters.Evaluate(func(col int) (datatable.Value, error) {
		return p.source.Cell(row, col)
	})
}

// Compare orders source rows a and b by column col, ascending.
//
// A filtered column sorts by its filter's rule: numeric, text or
// chronological. Cells that do not parse under that rule compare Equal, so
// they keep their relative order instead of failing the sort. Unfiltered
// columns use the comparator registered for them, then the default
// comparator, and otherwise treat all rows as Equal.
func (p *TableFilterProxy) Compare(rowA, rowB, col int) datatable.Ordering {
	a, err := p.source.Cell(rowA, col)
	if err != nil {
		return datatable.Equal
	}
	b, err := p.source.Cell(rowB, col)
	if err != nil {
		return datatable.Equal
	}

	if f, ok := p.filters.Get(col); ok {
		return f.Compare(a, b)
	}
	if cmp, ok := p.comparators[col]; ok {
		return cmp(a, b)
	}
	if p.defaultComparator != nil {
		return p.defaultComparator(a, b)
	}
	return datatable.Equal
}

// Sortable reports whether col has any ordering rule.
func (p *TableFilterProxy) Sortable(col int) bool {
	if _, ok := p.filters.Get(col); ok {
		return true
	}
	if _, ok := p.comparators[col]; ok {
		return true
	}
	return p.defaultComparator != nil && col >= 0 && col < p.source.ColumnCount()
}
