package filter

import (
	"slices"
	"strings"

	"github.com/magpierre/dishledger/datatable"
)

// Column is the predicate and ordering rule active on one column.
// Each filter method has exactly one implementation, so the method and its
// state can never disagree.
type Column interface {
	// Method names the predicate family.
	Method() datatable.FilterMethod

	// Accepts reports whether the cell passes the predicate.
	Accepts(v datatable.Value) bool

	// Compare orders two cells of the column, ascending.
	Compare(a, b datatable.Value) datatable.Ordering

	// Description renders the predicate for a status line.
	Description(column string) string
}

// Set holds at most one Column per column index and keeps a row only if
// every registered column accepts it.
type Set struct {
	columns map[int]Column
	order   []int
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{columns: make(map[int]Column)}
}

// Put registers f for col, replacing any previous filter.
func (s *Set) Put(col int, f Column) {
	if _, ok := s.columns[col]; !ok {
		i, _ := slices.BinarySearch(s.order, col)
		s.order = slices.Insert(s.order, i, col)
	}
	s.columns[col] = f
}

// Get returns the filter registered for col.
func (s *Set) Get(col int) (Column, bool) {
	f, ok := s.columns[col]
	return f, ok
}

// Delete removes the filter registered for col.
func (s *Set) Delete(col int) bool {
	if _, ok := s.columns[col]; !ok {
		return false
	}
	delete(s.columns, col)
	i, _ := slices.BinarySearch(s.order, col)
	s.order = slices.Delete(s.order, i, i+1)
	return true
}

// Clear removes every filter.
func (s *Set) Clear() {
	clear(s.columns)
	s.order = s.order[:0]
}

// Len returns the number of registered filters.
func (s *Set) Len() int {
	return len(s.columns)
}

// Columns returns the filtered column indices in ascending order.
func (s *Set) Columns() []int {
	return slices.Clone(s.order)
}

// Upsert returns the filter of type T registered for col. If col has no
// filter, or one of another method, seed() is registered in its place.
func Upsert[T Column](s *Set, col int, seed func() T) T {
	if existing, ok := s.columns[col].(T); ok {
		return existing
	}
	f := seed()
	s.Put(col, f)
	return f
}

// Evaluate checks every registered column against the row whose cells cell
// returns, in ascending column order, stopping at the first rejection.
// Columns whose cell cannot be read impose no constraint.
func (s *Set) Evaluate(cell func(col int) (datatable.Value, error)) bool {
	for _, col := range s.order {
		v, err := cell(col)
		if err != nil {
			continue
		}
		if !s.columns[col].Accepts(v) {
			return false // Short-circuit on first failure
		}
	}
	return true
}

// Description renders every filter joined by AND. names maps column index
// to display name.
func (s *Set) Description(names []string) string {
	if len(s.columns) == 0 {
		return "no filter"
	}

	cols := s.order
	descriptions := make([]string, len(cols))
	for i, col := range cols {
		name := "?"
		if col < len(names) {
			name = names[col]
		}
		descriptions[i] = s.columns[col].Description(name)
	}
	return "(" + strings.Join(descriptions, " AND ") + ")"
}
