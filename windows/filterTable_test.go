package windows

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/dishledger/adapters/slice"
	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/export"
	"github.com/magpierre/dishledger/proxy"
)

var today = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newDishTable(t *testing.T) *FilterTable {
	t.Helper()
	test.NewTempApp(t)

	src, err := slice.NewFromStrings(
		[]string{"name", "price", "date"},
		[][]string{
			{"Apple pie", "15", "2024-03-10"},
			{"Banana split", "9", "2024-03-01"},
			{"Almond cake", "12", "2024-03-05"},
		},
	)
	require.NoError(t, err)

	p, err := proxy.New(src,
		proxy.WithClock(func() time.Time { return today }),
		proxy.WithDefaultComparator(proxy.CompareText),
	)
	require.NoError(t, err)
	return NewFilterTable(p)
}

func TestRegexEntryFiltersRows(t *testing.T) {
	ft := newDishTable(t)
	entry := ft.AddRegexFilter(0, "Dish")

	test.Type(entry, "^A")

	assert.Equal(t, 2, ft.Proxy().VisibleRowCount())
	assert.Equal(t, "showing 2/3 rows", ft.Status())
	assert.NoError(t, ft.Err())
}

func TestInvalidRegexKeepsPreviousFilter(t *testing.T) {
	ft := newDishTable(t)
	entry := ft.AddRegexFilter(0, "Dish")

	test.Type(entry, "^A(")

	require.Error(t, ft.Err())
	assert.ErrorIs(t, ft.Err(), datatable.ErrInvalidPattern)
	assert.True(t, strings.HasPrefix(ft.Status(), "Invalid filter:"))
	assert.Equal(t, 2, ft.Proxy().VisibleRowCount(), "the ^A filter stays active")
}

func TestNumberEntriesFilterRows(t *testing.T) {
	ft := newDishTable(t)
	min, max := ft.AddNumberFilter(1, "Price")

	test.Type(min, "10")
	assert.Equal(t, 3, ft.Proxy().VisibleRowCount(), "max still 0, filter inactive")

	test.Type(max, "15")
	assert.Equal(t, 2, ft.Proxy().VisibleRowCount())
	lo, hi, ok := ft.Proxy().NumberBounds(1)
	require.True(t, ok)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 15.0, hi)
}

func TestNumberEntryRejectsText(t *testing.T) {
	ft := newDishTable(t)
	min, _ := ft.AddNumberFilter(1, "Price")

	test.Type(min, "x")

	require.Error(t, ft.Err())
	assert.Contains(t, ft.Status(), "is not a number")
}

func TestDateEntriesStartWithDefaultWindow(t *testing.T) {
	ft := newDishTable(t)
	low, high, err := ft.AddDateFilter(2, "Date")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-03", low.Text)
	assert.Equal(t, "2024-03-10", high.Text)
	assert.Equal(t, 2, ft.Proxy().VisibleRowCount())

	low.SetText("")
	test.Type(low, "2024-03-01")
	assert.Equal(t, 3, ft.Proxy().VisibleRowCount())
}

func TestClearAllEmptiesNumberEntries(t *testing.T) {
	ft := newDishTable(t)
	min, max := ft.AddNumberFilter(1, "Price")
	test.Type(min, "10")
	test.Type(max, "13")
	require.Equal(t, 1, ft.Proxy().VisibleRowCount())

	ft.Proxy().ClearAll()
	assert.Empty(t, min.Text)
	assert.Empty(t, max.Text)
	assert.Equal(t, 3, ft.Proxy().VisibleRowCount())

	test.Type(max, "130")
	lo, hi, ok := ft.Proxy().NumberBounds(1)
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 130.0, hi)
	assert.Empty(t, min.Text, "the box matches the bound in use")
	assert.Equal(t, 3, ft.Proxy().VisibleRowCount())
}

func TestQueryFillsFilterEntries(t *testing.T) {
	ft := newDishTable(t)
	pattern := ft.AddRegexFilter(0, "Dish")
	min, max := ft.AddNumberFilter(1, "Price")
	low, high, err := ft.AddDateFilter(2, "Date")
	require.NoError(t, err)
	query := ft.AddQueryBox()

	test.Type(query, "price >= 10 AND price <= 20")
	query.OnSubmitted(query.Text)
	require.NoError(t, ft.Err())
	assert.Equal(t, "10", min.Text)
	assert.Equal(t, "20", max.Text)

	query.SetText("date = 2024-03-05 AND name = Almond cake")
	query.OnSubmitted(query.Text)
	require.NoError(t, ft.Err())
	assert.Equal(t, "2024-03-05", low.Text)
	assert.Equal(t, "2024-03-05", high.Text)
	assert.Equal(t, "^Almond cake$", pattern.Text)
	assert.Equal(t, 1, ft.Proxy().VisibleRowCount())

	ft.Proxy().ClearAll()
	assert.Empty(t, pattern.Text)
	assert.Empty(t, min.Text)
	assert.Empty(t, max.Text)
	assert.Empty(t, low.Text)
	assert.Empty(t, high.Text)
	assert.Equal(t, 3, ft.Proxy().VisibleRowCount())
}

func TestSyncLeavesTextBeingEdited(t *testing.T) {
	ft := newDishTable(t)
	pattern := ft.AddRegexFilter(0, "Dish")
	low, _, err := ft.AddDateFilter(2, "Date")
	require.NoError(t, err)

	test.Type(pattern, "^A(")
	low.SetText("2024-03")
	ft.CycleSort(0)

	assert.Equal(t, "^A(", pattern.Text)
	assert.Equal(t, "2024-03", low.Text)
	bound, _, ok := ft.Proxy().DateBounds(2)
	require.True(t, ok)
	assert.Equal(t, "2024-03-03", bound.Format(datatable.DateLayout))
}

func TestCycleSort(t *testing.T) {
	ft := newDishTable(t)

	ft.CycleSort(0)
	assert.Equal(t, "name ↑", ft.headerText(0))
	assert.Equal(t, "showing 3/3 rows | Sorted: name ↑", ft.Status())

	ft.CycleSort(0)
	assert.Equal(t, "name ↓", ft.headerText(0))

	ft.CycleSort(0)
	assert.Equal(t, "name", ft.headerText(0))
	assert.False(t, ft.Proxy().SortState().IsSorted())
}

func TestParseBound(t *testing.T) {
	n, err := parseBound(" 12.5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, n)

	n, err = parseBound("")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = parseBound("-3")
	assert.ErrorIs(t, err, errNegativeBound)
}

func TestOpenParquetBuildsTypedControls(t *testing.T) {
	test.NewTempApp(t)

	src, err := slice.New(
		[]string{"date", "name", "sold"},
		[]datatable.DataType{datatable.TypeDate, datatable.TypeString, datatable.TypeInt},
		[][]datatable.Value{
			{datatable.StringValue("2024-03-10"), datatable.StringValue("Apple pie"), datatable.NewValue(int64(3), datatable.TypeInt)},
			{datatable.StringValue("2024-03-03"), datatable.StringValue("Banana split"), datatable.NewValue(int64(12), datatable.TypeInt)},
		},
	)
	require.NoError(t, err)
	p, err := proxy.New(src)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sales.parquet")
	require.NoError(t, export.Visible(p, path, export.FormatParquet))

	ft, err := openParquet(path)
	require.NoError(t, err)

	assert.Equal(t, 2, ft.Proxy().Source().RowCount())
	assert.Len(t, ft.controls.Objects, 4)
	method, ok := ft.Proxy().Filter(0)
	require.True(t, ok)
	assert.Equal(t, datatable.MethodDateRange, method)
	for col := 0; col < 3; col++ {
		assert.True(t, ft.Proxy().Sortable(col))
	}
}

func TestComparatorFor(t *testing.T) {
	a := datatable.StringValue("9")
	b := datatable.StringValue("10")
	assert.Equal(t, datatable.Less, comparatorFor(datatable.TypeInt)(a, b))
	assert.Equal(t, datatable.Greater, comparatorFor(datatable.TypeString)(a, b))
}

func TestStorageListable(t *testing.T) {
	test.NewTempApp(t)
	dir := t.TempDir()

	uri, err := storageListable(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, uri.Path())
}
