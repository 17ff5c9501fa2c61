package parquet_accumulator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const parallelism = 4

var (
	ErrNoRows           = errors.New("no rows accumulated")
	ErrSchemaMismatch   = errors.New("parquet schema does not match row struct")
	ErrNotAStructRecord = errors.New("parquet record was not a struct")
)

// WriteParquet writes every accumulated row to w as a parquet file. Rows are
// filled to the current column count first, columns a row never had are
// written as nulls.
func (pa *ParquetSchemaAccumulator) WriteParquet(w io.Writer) (int64, error) {
	if pa.numRows == 0 {
		return 0, ErrNoRows
	}

	parquetSchema, err := pa.GetSchemaString()
	if err != nil {
		return 0, fmt.Errorf("error in GetSchemaString: %w", err)
	}

	pw, err := writer.NewJSONWriterFromWriter(parquetSchema, w, parallelism)
	if err != nil {
		return 0, fmt.Errorf("error in NewJSONWriterFromWriter: %w", err)
	}

	var written int64
	for i := 0; i < pa.numRows; i++ {
		row, err := pa.GetRow(i)
		if err != nil {
			return written, fmt.Errorf("error in GetRow for row %d: %w", i, err)
		}
		rowBytes, err := json.Marshal(row)
		if err != nil {
			return written, fmt.Errorf("error in json.Marshal of flat row: %w", err)
		}
		err = pw.Write(string(rowBytes))
		if err != nil {
			return written, fmt.Errorf("error in pw.Write for row %s: %w", string(rowBytes), err)
		}
		written++
	}

	err = pw.WriteStop()
	if err != nil {
		return written, fmt.Errorf("error in pw.WriteStop: %w", err)
	}

	return written, nil
}

// ReadParquet reads every row of the parquet file and writes it to the
// accumulator, returning the number of rows read. Files with different column
// sets can be read into the same accumulator.
func (pa *ParquetSchemaAccumulator) ReadParquet(pf source.ParquetFile) (int64, error) {
	pr, err := reader.NewParquetReader(pf, nil, parallelism)
	if err != nil {
		return 0, fmt.Errorf("error in NewParquetReader: %w", err)
	}
	defer pr.ReadStop()

	// The reader renames the footer schema to the struct field names, the
	// names the file was written with are kept as ExName
	var names []string
	for _, pos := range topLevelColumns(pr.SchemaHandler.SchemaElements) {
		names = append(names, pr.SchemaHandler.Infos[pos].ExName)
	}

	numRows := pr.GetNumRows()
	if numRows == 0 {
		return 0, nil
	}

	records, err := pr.ReadByNumber(int(numRows))
	if err != nil {
		return 0, fmt.Errorf("error in ReadByNumber: %w", err)
	}

	// Struct -> Map, the dynamic struct fields follow the schema order
	for _, record := range records {
		v := reflect.Indirect(reflect.ValueOf(record))
		if v.Kind() != reflect.Struct {
			return 0, ErrNotAStructRecord
		}
		if v.NumField() != len(names) {
			return 0, fmt.Errorf("%w: %d fields for %d columns", ErrSchemaMismatch, v.NumField(), len(names))
		}
		row := make(map[string]any, len(names))
		for i, name := range names {
			row[name] = v.Field(i).Interface()
		}
		if err := pa.WriteRow(row); err != nil {
			return 0, fmt.Errorf("error in WriteRow: %w", err)
		}
	}

	return int64(len(records)), nil
}

// topLevelColumns returns the positions of the root's direct children in a
// flattened parquet schema, skipping over the nested elements of list columns
func topLevelColumns(schema []*parquet.SchemaElement) []int {
	if len(schema) == 0 {
		return nil
	}
	var positions []int
	pos := 1
	for i := int32(0); i < schema[0].GetNumChildren() && pos < len(schema); i++ {
		positions = append(positions, pos)
		pos = skipSchemaElement(schema, pos)
	}
	return positions
}

// skipSchemaElement returns the position after the element at pos and all of its descendants
func skipSchemaElement(schema []*parquet.SchemaElement, pos int) int {
	children := schema[pos].GetNumChildren()
	pos++
	for i := int32(0); i < children && pos < len(schema); i++ {
		pos = skipSchemaElement(schema, pos)
	}
	return pos
}
