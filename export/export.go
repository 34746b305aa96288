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

// Package export writes the rows a proxy currently shows to Parquet, CSV or
// JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/proxy"
)

// Format represents the supported export formats
type Format int

const (
	FormatParquet Format = iota
	FormatCSV
	FormatJSON
)

// String returns the file extension of the format, without the dot.
func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: unsupported file type %q", datatable.ErrExportFailed, filepath.Ext(path))
	}
}

// Visible writes the visible rows of p, in view order, to filePath.
func Visible(p *proxy.TableFilterProxy, filePath string, format Format) error {
	table, err := ToArrow(p, memory.NewGoAllocator())
	if err != nil {
		return fmt.Errorf("%w: failed to prepare filtered data: %v", datatable.ErrExportFailed, err)
	}
	defer table.Release()

	switch format {
	case FormatParquet:
		err = ToParquet(table, filePath)
	case FormatCSV:
		err = ToCSV(table, filePath)
	case FormatJSON:
		err = ToJSON(table, filePath)
	default:
		err = fmt.Errorf("unknown format %d", int(format))
	}
	if err != nil {
		return fmt.Errorf("%w: %v", datatable.ErrExportFailed, err)
	}
	return nil
}

// ToParquet exports the Arrow table to a Parquet file
func ToParquet(table arrow.Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), file, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// ToCSV exports the Arrow table to a CSV file
func ToCSV(table arrow.Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	schema := table.Schema()
	headers := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		headers[i] = field.Name
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		for rowIdx := 0; rowIdx < int(rec.NumRows()); rowIdx++ {
			row := make([]string, rec.NumCols())
			for colIdx, col := range rec.Columns() {
				row[colIdx] = formatValue(col, rowIdx)
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	if tr.Err() != nil {
		return fmt.Errorf("error reading table: %w", tr.Err())
	}

	writer.Flush()
	return writer.Error()
}

// ToJSON exports the Arrow table to a JSON file
func ToJSON(table arrow.Table, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()

	records := make([]map[string]interface{}, 0, table.NumRows())
	schema := table.Schema()

	for tr.Next() {
		rec := tr.Record()
		for rowIdx := 0; rowIdx < int(rec.NumRows()); rowIdx++ {
			record := make(map[string]interface{})
			for colIdx, col := range rec.Columns() {
				record[schema.Field(colIdx).Name] = typedValue(col, rowIdx)
			}
			records = append(records, record)
		}
	}
	if tr.Err() != nil {
		return fmt.Errorf("error reading table: %w", tr.Err())
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// formatValue converts an Arrow column value at a specific position to a string
func formatValue(col arrow.Array, pos int) string {
	if col.IsNull(pos) {
		return ""
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.Int64:
		return fmt.Sprintf("%d", c.Value(pos))
	case *array.Float64:
		return fmt.Sprintf("%g", c.Value(pos))
	case *array.Date32:
		return c.Value(pos).ToTime().Format(datatable.DateLayout)
	case *array.Timestamp:
		return c.Value(pos).ToTime(arrow.Microsecond).Format("2006-01-02 15:04:05.999999")
	default:
		return col.ValueStr(pos)
	}
}

// typedValue returns the typed value for JSON export (preserves types)
func typedValue(col arrow.Array, pos int) interface{} {
	if col.IsNull(pos) {
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.Int64:
		return c.Value(pos)
	case *array.Float64:
		return c.Value(pos)
	case *array.Boolean:
		return c.Value(pos)
	case *array.Timestamp:
		return c.Value(pos).ToTime(arrow.Microsecond).Format("2006-01-02T15:04:05.999999Z")
	default:
		return formatValue(col, pos)
	}
}
