package table

import (
	"fmt"
)

type (
	// TableMap is an ordered set of rows addressed by column name. The column
	// name to position mapping is held once for the whole table, rows only
	// hold values.
	//
	// Rows are grown independently: a row's length is the number of columns
	// that existed when it was last written, which may trail the current
	// column count until FillToEnd/FillRowToEnd is called on it.
	//
	// A TableMap is not safe for concurrent use.
	TableMap[V any] struct {
		// Ordered column names, position is the index
		columns []string
		// Reverse lookup of columns
		index map[string]int

		rows [][]V
		// The row targeted by Set, Get, and FillToEnd
		cursor int
	}
)

// New creates an empty TableMap with row 0 allocated and the cursor on it
func New[V any]() *TableMap[V] {
	return &TableMap[V]{
		index: make(map[string]int),
		rows:  make([][]V, 1),
	}
}

// RegisterColumn adds the column at the next position if it is not known yet
func (tm *TableMap[V]) RegisterColumn(name string) {
	if _, exists := tm.index[name]; exists {
		return
	}
	tm.index[name] = len(tm.columns)
	tm.columns = append(tm.columns, name)
}

// RegisterColumns registers each name in order, skipping ones already present
func (tm *TableMap[V]) RegisterColumns(names ...string) {
	for _, name := range names {
		tm.RegisterColumn(name)
	}
}

// Set writes the value into the cursor row. After the write the row spans
// every column registered so far, cells that were never written hold the zero
// value.
func (tm *TableMap[V]) Set(name string, value V) error {
	pos, exists := tm.index[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}

	row := extend(tm.rows[tm.cursor], len(tm.columns))
	row[pos] = value
	tm.rows[tm.cursor] = row
	return nil
}

// Get reads the column from the cursor row
func (tm *TableMap[V]) Get(name string) (V, error) {
	return tm.GetAt(tm.cursor, name)
}

// GetAt reads the column from the given row. ErrNoDataForRow is returned when
// the row was never extended to the column's position, the zero value is never
// handed back in its place.
func (tm *TableMap[V]) GetAt(row int, name string) (v V, err error) {
	pos, exists := tm.index[name]
	if !exists {
		err = fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		return
	}
	if row < 0 || row >= len(tm.rows) || pos >= len(tm.rows[row]) {
		err = fmt.Errorf("%w: row %d column %s", ErrNoDataForRow, row, name)
		return
	}
	return tm.rows[row][pos], nil
}

// NextRow appends an empty row and moves the cursor to it. The row being left
// keeps its current length.
func (tm *TableMap[V]) NextRow() {
	tm.rows = append(tm.rows, nil)
	tm.cursor = len(tm.rows) - 1
}

// FillToEnd extends the cursor row with zero values up to the current column count
func (tm *TableMap[V]) FillToEnd() {
	tm.rows[tm.cursor] = extend(tm.rows[tm.cursor], len(tm.columns))
}

// FillRowToEnd extends the row with zero values up to the current column
// count. Columns registered afterwards are not covered, the row needs another
// fill to reach them.
func (tm *TableMap[V]) FillRowToEnd(row int) error {
	if row < 0 || row >= len(tm.rows) {
		return fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, row, len(tm.rows))
	}
	tm.rows[row] = extend(tm.rows[row], len(tm.columns))
	return nil
}

// Rows returns a copy of every row as stored, in insertion order. Rows are not
// equalized, their lengths differ unless each one was filled.
func (tm *TableMap[V]) Rows() [][]V {
	rows := make([][]V, len(tm.rows))
	for i, row := range tm.rows {
		rows[i] = append(make([]V, 0, len(row)), row...)
	}
	return rows
}

// Columns returns the column names in registration order
func (tm *TableMap[V]) Columns() []string {
	return append(make([]string, 0, len(tm.columns)), tm.columns...)
}

// ColumnIndex returns the position of the column
func (tm *TableMap[V]) ColumnIndex(name string) (int, bool) {
	pos, exists := tm.index[name]
	return pos, exists
}

// NumColumns returns the number of registered columns
func (tm *TableMap[V]) NumColumns() int {
	return len(tm.columns)
}

// NumRows returns the number of rows, including the cursor row
func (tm *TableMap[V]) NumRows() int {
	return len(tm.rows)
}

// Cursor returns the index of the row targeted by Set and Get
func (tm *TableMap[V]) Cursor() int {
	return tm.cursor
}

// RowLen returns the stored length of the row, 0 if it does not exist
func (tm *TableMap[V]) RowLen(row int) int {
	if row < 0 || row >= len(tm.rows) {
		return 0
	}
	return len(tm.rows[row])
}

// extend pads row with zero values until it has length n, never shrinking it
func extend[V any](row []V, n int) []V {
	if len(row) >= n {
		return row
	}
	var zero V
	for len(row) < n {
		row = append(row, zero)
	}
	return row
}
