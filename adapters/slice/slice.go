// Package slice provides an in-memory datatable.DataSource.
package slice

import (
	"fmt"

	"github.com/magpierre/dishledger/datatable"
)

// Source is a datatable.DataSource over rows held in memory.
type Source struct {
	names []string
	types []datatable.DataType
	rows  [][]datatable.Value
}

// New creates a Source. Every row must have one value per column.
func New(names []string, types []datatable.DataType, rows [][]datatable.Value) (*Source, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("column names (%d) and types (%d) differ in length", len(names), len(types))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", datatable.ErrInvalidRow, i, len(row), len(names))
		}
	}
	return &Source{names: names, types: types, rows: rows}, nil
}

// NewFromStrings creates a Source whose cells are all TypeString. It suits
// tables read from text, where every filter parses the cell itself.
func NewFromStrings(names []string, rows [][]string) (*Source, error) {
	types := make([]datatable.DataType, len(names))
	values := make([][]datatable.Value, len(rows))
	for i, row := range rows {
		values[i] = make([]datatable.Value, len(row))
		for j, cell := range row {
			values[i][j] = datatable.StringValue(cell)
		}
	}
	return New(names, types, values)
}

// Append adds a row. The caller must invalidate any proxy over the source.
func (s *Source) Append(row []datatable.Value) error {
	if len(row) != len(s.names) {
		return fmt.Errorf("%w: row has %d values, want %d", datatable.ErrInvalidRow, len(row), len(s.names))
	}
	s.rows = append(s.rows, row)
	return nil
}

// RowCount implements datatable.DataSource.
func (s *Source) RowCount() int {
	return len(s.rows)
}

// ColumnCount implements datatable.DataSource.
func (s *Source) ColumnCount() int {
	return len(s.names)
}

// ColumnName implements datatable.DataSource.
func (s *Source) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", datatable.ErrInvalidColumn
	}
	return s.names[col], nil
}

// ColumnType implements datatable.DataSource.
func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return datatable.TypeString, datatable.ErrInvalidColumn
	}
	return s.types[col], nil
}

// Cell implements datatable.DataSource.
func (s *Source) Cell(row, col int) (datatable.Value, error) {
	if err := datatable.CheckBounds(row, col, len(s.rows), len(s.names)); err != nil {
		return datatable.Value{}, err
	}
	return s.rows[row][col], nil
}
