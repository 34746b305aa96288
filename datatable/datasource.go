package datatable

// DataSource provides read-only access to tabular data.
// All methods should return errors rather than panic.
type DataSource interface {
	// RowCount returns the total number of rows in the data source.
	RowCount() int

	// ColumnCount returns the total number of columns in the data source.
	ColumnCount() int

	// ColumnName returns the name of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnName(col int) (string, error)

	// ColumnType returns the data type of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnType(col int) (DataType, error)

	// Cell returns the value at the specified row and column.
	// Returns ErrInvalidRow if row is out of range.
	// Returns ErrInvalidColumn if col is out of range.
	Cell(row, col int) (Value, error)
}

// ColumnNames collects every column name of src in order.
func ColumnNames(src DataSource) []string {
	names := make([]string, src.ColumnCount())
	for i := range names {
		names[i], _ = src.ColumnName(i)
	}
	return names
}

// CheckBounds reports ErrInvalidRow or ErrInvalidColumn for indices outside
// a rows x cols table.
func CheckBounds(row, col, rows, cols int) error {
	if row < 0 || row >= rows {
		return ErrInvalidRow
	}
	if col < 0 || col >= cols {
		return ErrInvalidColumn
	}
	return nil
}
