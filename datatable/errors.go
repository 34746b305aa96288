package datatable

import "errors"

// Common errors returned by the datatable package and its consumers.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrInvalidPattern is returned when a regular expression does not compile.
	ErrInvalidPattern = errors.New("invalid filter pattern")

	// ErrMalformedCell is returned when a cell does not parse to the type its
	// column filter needs. It never escapes a visibility or ordering query.
	ErrMalformedCell = errors.New("malformed cell value")

	// ErrNoDataSource is returned when a required data source is nil.
	ErrNoDataSource = errors.New("data source is nil")

	// ErrInvalidSortColumn is returned when trying to sort by an invalid column.
	ErrInvalidSortColumn = errors.New("invalid sort column")

	// ErrExportFailed is returned when export operation fails.
	ErrExportFailed = errors.New("export failed")
)
