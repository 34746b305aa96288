package proxy

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/dishledger/adapters/slice"
	"github.com/magpierre/dishledger/datatable"
)

const (
	colID = iota
	colName
	colPrice
	colSold
	colDate
)

var today = time.Date(2024, 3, 10, 18, 45, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func day(offset int) string {
	return today.AddDate(0, 0, offset).Format(datatable.DateLayout)
}

func newSource(t *testing.T) *slice.Source {
	t.Helper()
	src, err := slice.NewFromStrings(
		[]string{"id", "name", "price", "sold", "date"},
		[][]string{
			{"1", "Apple pie", "15", "3", day(0)},
			{"2", "Banana split", "9", "12", day(-7)},
			{"3", "Apricot tart", "20", "5", day(-8)},
			{"4", "Beef noodles", "n/a", "7", "not a date"},
			{"5", "Almond cake", "5", "20", day(-3)},
		},
	)
	require.NoError(t, err)
	return src
}

func newProxy(t *testing.T, opts ...Option) *TableFilterProxy {
	t.Helper()
	p, err := New(newSource(t), append([]Option{WithClock(fixedClock)}, opts...)...)
	require.NoError(t, err)
	return p
}

func visibleIDs(p *TableFilterProxy) []string {
	ids := make([]string, 0)
	for i := 0; i < p.VisibleRowCount(); i++ {
		v, _ := p.VisibleCell(i, colID)
		ids = append(ids, v.Formatted)
	}
	return ids
}

func TestNewRequiresSource(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)
}

func TestNoFiltersShowsEverything(t *testing.T) {
	p := newProxy(t)
	for row := 0; row < 5; row++ {
		assert.True(t, p.RowVisible(row))
	}
	assert.False(t, p.RowVisible(-1))
	assert.False(t, p.RowVisible(5))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, visibleIDs(p))
}

func TestNumberFilterInclusiveBounds(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetNumberFilter(colPrice, 10, 20))

	assert.True(t, p.RowVisible(0))  // 15
	assert.False(t, p.RowVisible(1)) // 9
	assert.True(t, p.RowVisible(2))  // 20
	assert.True(t, p.RowVisible(3))  // n/a fails open
	assert.False(t, p.RowVisible(4)) // 5
}

func TestNumberFilterMergesBounds(t *testing.T) {
	p := newProxy(t)

	// Only min set: max stays at 0, so the range is inactive.
	require.NoError(t, p.SetNumberFilter(colPrice, 10, KeepBound))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, visibleIDs(p))

	require.NoError(t, p.SetNumberFilter(colPrice, KeepBound, 16))
	assert.Equal(t, []string{"1", "4"}, visibleIDs(p))

	require.NoError(t, p.SetNumberFilter(colPrice, 1, KeepBound))
	assert.Equal(t, []string{"1", "2", "4", "5"}, visibleIDs(p))
}

func TestNumberFilterKeepBoundIsIdempotent(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetNumberFilter(colSold, 4, 15))
	require.NoError(t, p.SetNumberFilter(colSold, KeepBound, KeepBound))
	once := visibleIDs(p)
	desc := p.Describe()

	require.NoError(t, p.SetNumberFilter(colSold, KeepBound, KeepBound))
	assert.Equal(t, once, visibleIDs(p))
	assert.Equal(t, desc, p.Describe())
	assert.Equal(t, []string{"2", "3", "4"}, once)
}

func TestRegexFilterSearch(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetRegexFilter(colName, "^A"))
	assert.Equal(t, []string{"1", "3", "5"}, visibleIDs(p))

	require.NoError(t, p.SetRegexFilter(colName, "an"))
	assert.Equal(t, []string{"2"}, visibleIDs(p))

	require.NoError(t, p.SetRegexFilterCompiled(colName, regexp.MustCompile("(?i)CAKE|PIE")))
	assert.Equal(t, []string{"1", "5"}, visibleIDs(p))
}

func TestRegexFilterRejectsMalformedPatternAndKeepsState(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetRegexFilter(colName, "^A"))

	invalidated := 0
	p.OnInvalidated(func() { invalidated++ })

	err := p.SetRegexFilter(colName, "(")
	assert.True(t, errors.Is(err, datatable.ErrInvalidPattern))
	assert.Equal(t, 0, invalidated)

	assert.True(t, p.RowVisible(0))
	assert.False(t, p.RowVisible(1))

	err = p.SetRegexFilterCompiled(colName, nil)
	assert.ErrorIs(t, err, datatable.ErrInvalidPattern)
	assert.Equal(t, []string{"1", "3", "5"}, visibleIDs(p))
}

func TestDateFilterDefaultWindow(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetDateFilter(colDate, time.Time{}, time.Time{}))

	assert.True(t, p.RowVisible(0))  // today
	assert.True(t, p.RowVisible(1))  // today-7
	assert.False(t, p.RowVisible(2)) // today-8
	assert.False(t, p.RowVisible(3)) // unparsable fails closed
	assert.True(t, p.RowVisible(4))  // today-3
}

func TestDateFilterMergesBounds(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetDateFilter(colDate, today.AddDate(0, 0, -8), time.Time{}))
	assert.Equal(t, []string{"1", "2", "3", "5"}, visibleIDs(p))

	require.NoError(t, p.SetDateFilter(colDate, time.Time{}, today.AddDate(0, 0, -4)))
	assert.Equal(t, []string{"2", "3"}, visibleIDs(p))
}

func TestMalformedPolicyOverride(t *testing.T) {
	p := newProxy(t, WithMalformedPolicy(FailClosed))
	require.NoError(t, p.SetNumberFilter(colPrice, 1, 100))
	assert.False(t, p.RowVisible(3))

	p = newProxy(t, WithMalformedPolicy(FailOpen))
	require.NoError(t, p.SetDateFilter(colDate, time.Time{}, time.Time{}))
	assert.True(t, p.RowVisible(3))
}

func TestVisibilityIsConjunction(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetRegexFilter(colName, "^A"))
	require.NoError(t, p.SetNumberFilter(colSold, 4, 30))

	for row := 0; row < 5; row++ {
		single := newProxy(t)
		require.NoError(t, single.SetRegexFilter(colName, "^A"))
		byName := single.RowVisible(row)

		single = newProxy(t)
		require.NoError(t, single.SetNumberFilter(colSold, 4, 30))
		bySold := single.RowVisible(row)

		assert.Equal(t, byName && bySold, p.RowVisible(row), "row %d", row)
	}
}

func TestRemovingFilterOnlyAddsRows(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetRegexFilter(colName, "^A"))
	require.NoError(t, p.SetNumberFilter(colPrice, 10, 20))
	before := append([]int(nil), p.VisibleRows()...)

	require.NoError(t, p.ClearFilter(colPrice))
	after := p.VisibleRows()
	for _, row := range before {
		assert.Contains(t, after, row)
	}
	assert.GreaterOrEqual(t, len(after), len(before))
}

func TestReplacingMethodDiscardsState(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetNumberFilter(colName, 1, 2))
	method, ok := p.Filter(colName)
	require.True(t, ok)
	assert.Equal(t, datatable.MethodNumberRange, method)

	require.NoError(t, p.SetRegexFilter(colName, "noodles"))
	method, _ = p.Filter(colName)
	assert.Equal(t, datatable.MethodRegexMatch, method)
	assert.Equal(t, []string{"4"}, visibleIDs(p))

	// Back to a number range: bounds start fresh at (0, 0).
	require.NoError(t, p.SetNumberFilter(colName, KeepBound, KeepBound))
	assert.Equal(t, "(name any number)", p.Describe())
}

func TestInvalidColumnIsRejected(t *testing.T) {
	p := newProxy(t)
	invalidated := 0
	p.OnInvalidated(func() { invalidated++ })

	for _, col := range []int{-1, 5, 100} {
		assert.ErrorIs(t, p.SetNumberFilter(col, 1, 2), datatable.ErrInvalidColumn)
		assert.ErrorIs(t, p.SetRegexFilter(col, "x"), datatable.ErrInvalidColumn)
		assert.ErrorIs(t, p.SetRegexFilterCompiled(col, regexp.MustCompile("x")), datatable.ErrInvalidColumn)
		assert.ErrorIs(t, p.SetDateFilter(col, today, today), datatable.ErrInvalidColumn)
		assert.ErrorIs(t, p.ClearFilter(col), datatable.ErrInvalidColumn)
	}
	assert.Equal(t, 0, invalidated)
	assert.Empty(t, p.FilteredColumns())
}

func TestEveryMutationInvalidates(t *testing.T) {
	p := newProxy(t)
	invalidated := 0
	p.OnInvalidated(func() { invalidated++ })

	require.NoError(t, p.SetNumberFilter(colPrice, 10, 20))
	require.NoError(t, p.SetRegexFilter(colName, "a"))
	require.NoError(t, p.SetDateFilter(colDate, time.Time{}, time.Time{}))
	require.NoError(t, p.SetSort(colPrice, datatable.SortAscending))
	require.NoError(t, p.ClearFilter(colPrice))
	require.NoError(t, p.ClearFilter(colPrice)) // nothing to clear
	p.ClearAll()
	assert.Equal(t, 6, invalidated)
}

func TestCachedViewIsNeverStale(t *testing.T) {
	p := newProxy(t)
	assert.Equal(t, 5, p.VisibleRowCount())

	require.NoError(t, p.SetNumberFilter(colPrice, 10, 20))
	assert.Equal(t, 3, p.VisibleRowCount())

	src := p.Source().(*slice.Source)
	require.NoError(t, src.Append([]datatable.Value{
		datatable.StringValue("6"), datatable.StringValue("Udon"),
		datatable.StringValue("12"), datatable.StringValue("1"),
		datatable.StringValue(day(0)),
	}))
	p.Invalidate()
	assert.Equal(t, 4, p.VisibleRowCount())
}

func TestCompareUsesFilterRule(t *testing.T) {
	src, err := slice.NewFromStrings(
		[]string{"n", "s", "d"},
		[][]string{
			{"5", "Apple", "2024-01-01"},
			{"20", "Banana", "2024-02-01"},
			{"abc", "apple", "garbage"},
		},
	)
	require.NoError(t, err)
	p, err := New(src, WithClock(fixedClock))
	require.NoError(t, err)

	require.NoError(t, p.SetNumberFilter(0, KeepBound, KeepBound))
	require.NoError(t, p.SetRegexFilter(1, ""))
	require.NoError(t, p.SetDateFilter(2, time.Time{}, time.Time{}))

	assert.Equal(t, datatable.Less, p.Compare(0, 1, 0))
	assert.Equal(t, datatable.Greater, p.Compare(1, 0, 0))
	assert.Equal(t, datatable.Less, p.Compare(0, 1, 1))
	assert.Equal(t, datatable.Less, p.Compare(0, 2, 1)) // "Apple" < "apple"
	assert.Equal(t, datatable.Less, p.Compare(0, 1, 2))

	// Malformed cells are unordered rather than an error.
	assert.Equal(t, datatable.Equal, p.Compare(0, 2, 0))
	assert.Equal(t, datatable.Equal, p.Compare(2, 1, 2))

	// Out of range rows are unordered too.
	assert.Equal(t, datatable.Equal, p.Compare(0, 9, 0))
}

func TestCompareUnfilteredColumns(t *testing.T) {
	p := newProxy(t)
	assert.Equal(t, datatable.Equal, p.Compare(0, 1, colName))
	assert.False(t, p.Sortable(colName))

	p = newProxy(t,
		WithColumnComparator(colPrice, CompareNumber),
		WithDefaultComparator(CompareText),
	)
	assert.Equal(t, datatable.Greater, p.Compare(0, 1, colPrice)) // 15 > 9
	assert.Equal(t, datatable.Less, p.Compare(0, 1, colName))
	assert.Equal(t, datatable.Less, p.Compare(1, 0, colSold)) // "12" < "3" as text
	assert.True(t, p.Sortable(colSold))
}

func TestSortedView(t *testing.T) {
	p := newProxy(t, WithColumnComparator(colSold, CompareNumber))

	require.NoError(t, p.SetSort(colSold, datatable.SortAscending))
	assert.Equal(t, []string{"1", "3", "4", "2", "5"}, visibleIDs(p))

	require.NoError(t, p.SetSort(colSold, datatable.SortDescending))
	assert.Equal(t, []string{"5", "2", "4", "3", "1"}, visibleIDs(p))
	assert.Equal(t, "showing 5/5 rows | Sorted: sold ↓", p.Status())

	require.NoError(t, p.SetNumberFilter(colSold, 4, 15))
	assert.Equal(t, []string{"2", "4", "3"}, visibleIDs(p))

	require.NoError(t, p.SetSort(-1, datatable.SortNone))
	assert.Equal(t, []string{"2", "3", "4"}, visibleIDs(p))
	assert.Equal(t, "showing 3/5 rows", p.Status())
}

func TestSortKeepsMalformedRowsInPlace(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetNumberFilter(colPrice, KeepBound, KeepBound))
	require.NoError(t, p.SetSort(colPrice, datatable.SortAscending))

	rows := p.VisibleRows()
	assert.Len(t, rows, 5)
	assert.Contains(t, rows, 3)
}

func TestSetSortRejectsUnsortableColumn(t *testing.T) {
	p := newProxy(t)
	assert.ErrorIs(t, p.SetSort(colName, datatable.SortAscending), datatable.ErrInvalidSortColumn)
	assert.ErrorIs(t, p.SetSort(42, datatable.SortAscending), datatable.ErrInvalidSortColumn)
	assert.False(t, p.SortState().IsSorted())
}

func TestVisibleRowAccess(t *testing.T) {
	p := newProxy(t)
	require.NoError(t, p.SetRegexFilter(colName, "^B"))

	row, err := p.VisibleRow(1)
	require.NoError(t, err)
	assert.Equal(t, "Beef noodles", row[colName].Formatted)

	src, err := p.SourceRow(1)
	require.NoError(t, err)
	assert.Equal(t, 3, src)

	_, err = p.VisibleCell(2, colName)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
}

func TestBoundsIntrospection(t *testing.T) {
	p := newProxy(t)
	_, _, ok := p.NumberBounds(colPrice)
	assert.False(t, ok)

	require.NoError(t, p.SetNumberFilter(colPrice, 3, KeepBound))
	min, max, ok := p.NumberBounds(colPrice)
	require.True(t, ok)
	assert.Equal(t, 3.0, min)
	assert.Equal(t, 0.0, max)

	require.NoError(t, p.SetDateFilter(colDate, time.Time{}, time.Time{}))
	low, high, ok := p.DateBounds(colDate)
	require.True(t, ok)
	assert.Equal(t, day(-7), low.Format(datatable.DateLayout))
	assert.Equal(t, day(0), high.Format(datatable.DateLayout))

	_, _, ok = p.DateBounds(colPrice)
	assert.False(t, ok)
}

func TestRegexPatternIntrospection(t *testing.T) {
	p := newProxy(t)
	_, ok := p.RegexPattern(colName)
	assert.False(t, ok)

	require.NoError(t, p.SetRegexFilter(colName, "^A"))
	pattern, ok := p.RegexPattern(colName)
	require.True(t, ok)
	assert.Equal(t, "^A", pattern)

	require.NoError(t, p.SetNumberFilter(colName, 1, 2))
	_, ok = p.RegexPattern(colName)
	assert.False(t, ok)
}
