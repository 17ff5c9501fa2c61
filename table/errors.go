package table

import "errors"

var (
	// ErrUnknownColumn is returned when a column name was never registered
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoDataForRow is returned when reading a column the row has not been
	// extended to. FillRowToEnd makes the column readable as the zero value.
	ErrNoDataForRow = errors.New("no data for row")

	// ErrRowOutOfRange is returned when filling a row that was never created
	ErrRowOutOfRange = errors.New("row out of range")
)
