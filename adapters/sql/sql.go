// Package sql materializes query results as a datatable.DataSource.
package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/magpierre/dishledger/adapters/slice"
	"github.com/magpierre/dishledger/datatable"
)

// Query runs query and copies every row into an in-memory source. Column
// types come from the declared database types of the result.
func Query(ctx context.Context, db sqlx.QueryerContext, query string, args ...interface{}) (*slice.Source, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	names := make([]string, len(colTypes))
	types := make([]datatable.DataType, len(colTypes))
	for i, ct := range colTypes {
		names[i] = ct.Name()
		types[i] = dataTypeOf(ct.DatabaseTypeName())
	}

	var values [][]datatable.Value
	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]datatable.Value, len(raw))
		for i, r := range raw {
			row[i] = toValue(r, types[i])
		}
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return slice.New(names, types, values)
}

// dataTypeOf maps a declared column type to a DataType, following SQLite's
// type affinity rules loosely. Expressions without a declared type read as
// strings and are parsed by the filters when needed.
func dataTypeOf(declared string) datatable.DataType {
	d := strings.ToUpper(declared)
	switch {
	case strings.Contains(d, "INT"):
		return datatable.TypeInt
	case strings.Contains(d, "REAL"), strings.Contains(d, "FLOA"), strings.Contains(d, "DOUB"),
		strings.Contains(d, "NUMERIC"), strings.Contains(d, "DECIMAL"):
		return datatable.TypeFloat
	case d == "DATE":
		return datatable.TypeDate
	case strings.Contains(d, "TIME"):
		return datatable.TypeTimestamp
	case strings.Contains(d, "BOOL"):
		return datatable.TypeBool
	default:
		return datatable.TypeString
	}
}

func toValue(raw interface{}, typ datatable.DataType) datatable.Value {
	switch v := raw.(type) {
	case nil:
		return datatable.NewNullValue(typ)
	case []byte:
		return datatable.NewValue(string(v), typ)
	case time.Time:
		return datatable.NewValue(v.UTC(), typ)
	default:
		return datatable.NewValue(v, typ)
	}
}
