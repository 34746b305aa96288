package proxy

import (
	"fmt"
	"slices"

	"github.com/magpierre/dishledger/datatable"
)

// SetSort orders the visible rows by col in direction dir. SortNone restores
// source order.
func (p *TableFilterProxy) SetSort(col int, dir datatable.SortDirection) error {
	if dir == datatable.SortNone {
		p.sortState = datatable.SortState{Column: -1, Direction: datatable.SortNone}
		p.Invalidate()
		return nil
	}
	if col < 0 || col >= p.source.ColumnCount() || !p.Sortable(col) {
		return fmt.Errorf("%w: %d", datatable.ErrInvalidSortColumn, col)
	}

	p.sortState = datatable.SortState{Column: col, Direction: dir}
	p.Invalidate()
	return nil
}

// SortState returns the current sort configuration.
func (p *TableFilterProxy) SortState() datatable.SortState {
	return p.sortState
}

// VisibleRows returns the source indices of the visible rows in view order.
// The result is computed on first use after an invalidation and must not be
// modified.
func (p *TableFilterProxy) VisibleRows() []int {
	if p.visible != nil {
		return p.visible
	}

	rows := make([]int, 0, p.source.RowCount())
	for row := 0; row < p.source.RowCount(); row++ {
		if p.RowVisible(row) {
			rows = append(rows, row)
		}
	}

	if p.sortState.IsSorted() {
		col := p.sortState.Column
		desc := p.sortState.Direction == datatable.SortDescending
		slices.SortStableFunc(rows, func(a, b int) int {
			o := p.Compare(a, b, col)
			if desc {
				o = o.Reverse()
			}
			return int(o)
		})
	}

	p.visible = rows
	return rows
}

// VisibleRowCount returns the number of visible rows.
func (p *TableFilterProxy) VisibleRowCount() int {
	return len(p.VisibleRows())
}

// SourceRow maps view position i to its source row index.
func (p *TableFilterProxy) SourceRow(i int) (int, error) {
	rows := p.VisibleRows()
	if i < 0 || i >= len(rows) {
		return -1, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, i)
	}
	return rows[i], nil
}

// VisibleCell returns the cell at view position i of column col.
func (p *TableFilterProxy) VisibleCell(i, col int) (datatable.Value, error) {
	row, err := p.SourceRow(i)
	if err != nil {
		return datatable.Value{}, err
	}
	return p.source.Cell(row, col)
}

// VisibleRow returns every cell at view position i.
func (p *TableFilterProxy) VisibleRow(i int) ([]datatable.Value, error) {
	row, err := p.SourceRow(i)
	if err != nil {
		return nil, err
	}

	values := make([]datatable.Value, p.source.ColumnCount())
	for col := range values {
		v, err := p.source.Cell(row, col)
		if err != nil {
			return nil, err
		}
		values[col] = v
	}
	return values, nil
}

// Status summarises the view for a status bar, e.g.
// "showing 3/10 rows | Sorted: price ↑".
func (p *TableFilterProxy) Status() string {
	status := fmt.Sprintf("showing %d/%d rows", p.VisibleRowCount(), p.source.RowCount())
	if p.sortState.IsSorted() {
		name, _ := p.source.ColumnName(p.sortState.Column)
		direction := "↑"
		if p.sortState.Direction == datatable.SortDescending {
			direction = "↓"
		}
		status += fmt.Sprintf(" | Sorted: %s %s", name, direction)
	}
	return status
}
