package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cast"

	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/internal/filter"
	"github.com/magpierre/dishledger/proxy"
)

// arrowType picks the Arrow type a column is exported as.
func arrowType(dt datatable.DataType) arrow.DataType {
	switch dt {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case datatable.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case datatable.TypeTimestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	default:
		return arrow.BinaryTypes.String
	}
}

// ToArrow copies the visible rows of p, in view order, into a new table.
// Cells that do not convert to their column's type are written as nulls.
// The caller must Release the table.
func ToArrow(p *proxy.TableFilterProxy, mem memory.Allocator) (arrow.Table, error) {
	src := p.Source()
	rows := p.VisibleRows()

	fields := make([]arrow.Field, src.ColumnCount())
	for i := range fields {
		name, err := src.ColumnName(i)
		if err != nil {
			return nil, err
		}
		dt, err := src.ColumnType(i)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: name, Type: arrowType(dt), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	columns := make([]arrow.Column, len(fields))
	for i, field := range fields {
		builder := array.NewBuilder(mem, field.Type)
		for _, row := range rows {
			v, err := src.Cell(row, i)
			if err != nil {
				builder.Release()
				return nil, err
			}
			appendValue(builder, v)
		}
		arr := builder.NewArray()
		builder.Release()

		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		arr.Release()
		columns[i] = *arrow.NewColumn(field, chunked)
		chunked.Release()
	}

	table := array.NewTable(schema, columns, int64(len(rows)))
	for i := range columns {
		columns[i].Release()
	}
	return table, nil
}

// appendValue appends v to builder, converting through the parse rules the
// filters use.
func appendValue(builder array.Builder, v datatable.Value) {
	if v.IsNull {
		builder.AppendNull()
		return
	}

	switch b := builder.(type) {
	case *array.Int64Builder:
		n, err := toInt64(v)
		if err != nil {
			b.AppendNull()
			return
		}
		b.Append(n)
	case *array.Float64Builder:
		n, err := filter.ParseNumber(v)
		if err != nil {
			b.AppendNull()
			return
		}
		b.Append(n)
	case *array.BooleanBuilder:
		flag, ok := v.Raw.(bool)
		if !ok {
			b.AppendNull()
			return
		}
		b.Append(flag)
	case *array.Date32Builder:
		d, err := filter.ParseDate(v)
		if err != nil {
			b.AppendNull()
			return
		}
		b.Append(arrow.Date32FromTime(d))
	case *array.TimestampBuilder:
		t, ok := v.Raw.(time.Time)
		if !ok {
			parsed, err := time.Parse(time.RFC3339, v.Formatted)
			if err != nil {
				b.AppendNull()
				return
			}
			t = parsed
		}
		b.Append(arrow.Timestamp(t.UnixMicro()))
	case *array.StringBuilder:
		b.Append(v.Formatted)
	default:
		builder.AppendNull()
	}
}

// toInt64 reads an integer cell without a float round trip. Fractions and
// values outside the int64 range are refused.
func toInt64(v datatable.Value) (int64, error) {
	switch raw := v.Raw.(type) {
	case int64:
		return raw, nil
	case int, int8, int16, int32, uint8, uint16, uint32:
		return cast.ToInt64E(raw)
	case uint, uint64:
		u := cast.ToUint64(raw)
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", datatable.ErrMalformedCell, u)
		}
		return int64(u), nil
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return n, nil
		}
	}

	f, err := filter.ParseNumber(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, fmt.Errorf("%w: %q is not an integer", datatable.ErrMalformedCell, v.Formatted)
	}
	return int64(f), nil
}
