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

// Package arrow exposes an Apache Arrow table as a datatable.DataSource.
package arrow

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/magpierre/dishledger/datatable"
)

// Source reads cells straight out of the chunks of an arrow.Table.
type Source struct {
	table   arrow.Table
	columns []column
	rows    int
}

type column struct {
	name   string
	typ    datatable.DataType
	chunks []arrow.Array
	// starts[i] is the table row of the first value in chunks[i].
	starts []int
}

// NewFromArrowTable wraps table. The table is retained until Release.
func NewFromArrowTable(table arrow.Table) (*Source, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}
	table.Retain()

	schema := table.Schema()
	s := &Source{
		table:   table,
		columns: make([]column, table.NumCols()),
		rows:    int(table.NumRows()),
	}
	for i := range s.columns {
		field := schema.Field(i)
		chunks := table.Column(i).Data().Chunks()
		starts := make([]int, len(chunks))
		offset := 0
		for j, chunk := range chunks {
			starts[j] = offset
			offset += chunk.Len()
		}
		s.columns[i] = column{
			name:   field.Name,
			typ:    dataTypeOf(field.Type),
			chunks: chunks,
			starts: starts,
		}
	}
	return s, nil
}

// Release drops the reference taken on the table.
func (s *Source) Release() {
	s.table.Release()
}

// RowCount implements datatable.DataSource.
func (s *Source) RowCount() int {
	return s.rows
}

// ColumnCount implements datatable.DataSource.
func (s *Source) ColumnCount() int {
	return len(s.columns)
}

// ColumnName implements datatable.DataSource.
func (s *Source) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.columns) {
		return "", datatable.ErrInvalidColumn
	}
	return s.columns[col].name, nil
}

// ColumnType implements datatable.DataSource.
func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.columns) {
		return datatable.TypeString, datatable.ErrInvalidColumn
	}
	return s.columns[col].typ, nil
}

// Cell implements datatable.DataSource.
func (s *Source) Cell(row, col int) (datatable.Value, error) {
	if err := datatable.CheckBounds(row, col, s.rows, len(s.columns)); err != nil {
		return datatable.Value{}, err
	}

	c := s.columns[col]
	// Last chunk starting at or before row.
	i := sort.Search(len(c.starts), func(i int) bool { return c.starts[i] > row }) - 1
	return valueAt(c.chunks[i], row-c.starts[i], c.typ), nil
}

func dataTypeOf(dt arrow.DataType) datatable.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64, arrow.DECIMAL128:
		return datatable.TypeFloat
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.DATE32, arrow.DATE64:
		return datatable.TypeDate
	case arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	default:
		return datatable.TypeString
	}
}

// valueAt converts one value of arr. Types without a dedicated case fall
// back to Arrow's own string rendering.
func valueAt(arr arrow.Array, pos int, typ datatable.DataType) datatable.Value {
	if arr.IsNull(pos) {
		return datatable.NewNullValue(typ)
	}

	switch a := arr.(type) {
	case *array.String:
		return datatable.NewValue(a.Value(pos), typ)
	case *array.LargeString:
		return datatable.NewValue(a.Value(pos), typ)
	case *array.Int8:
		return datatable.NewValue(int64(a.Value(pos)), typ)
	case *array.Int16:
		return datatable.NewValue(int64(a.Value(pos)), typ)
	case *array.Int32:
		return datatable.NewValue(int64(a.Value(pos)), typ)
	case *array.Int64:
		return datatable.NewValue(a.Value(pos), typ)
	case *array.Uint8:
		return datatable.NewValue(uint64(a.Value(pos)), typ)
	case *array.Uint16:
		return datatable.NewValue(uint64(a.Value(pos)), typ)
	case *array.Uint32:
		return datatable.NewValue(uint64(a.Value(pos)), typ)
	case *array.Uint64:
		return datatable.NewValue(a.Value(pos), typ)
	case *array.Float32:
		return datatable.NewValue(float64(a.Value(pos)), typ)
	case *array.Float64:
		return datatable.NewValue(a.Value(pos), typ)
	case *array.Boolean:
		return datatable.NewValue(a.Value(pos), typ)
	case *array.Date32:
		return datatable.NewValue(a.Value(pos).ToTime().UTC(), typ)
	case *array.Date64:
		return datatable.NewValue(a.Value(pos).ToTime().UTC(), typ)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return datatable.NewValue(a.Value(pos).ToTime(unit), typ)
	default:
		return datatable.NewValue(arr.ValueStr(pos), datatable.TypeString)
	}
}
