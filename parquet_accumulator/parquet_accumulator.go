package parquet_accumulator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/danthegoodman1/tablemap/table"
	"github.com/danthegoodman1/tablemap/utils"
)

type (
	// ParquetSchemaAccumulator collects flat rows with possibly different keys
	// into a table.TableMap, keeping a parquet schema field for every column.
	// Field i of the schema describes column position i of the table.
	ParquetSchemaAccumulator struct {
		schema  ParquetSchema
		rows    *table.TableMap[any]
		numRows int
	}

	ParquetSchema struct {
		TagStructs SchemaTag        `json:"-,omitempty"`
		Fields     []*ParquetSchema `json:",omitempty"`
	}

	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string         `json:"name,omitempty"`
		Type           string         `json:"type,omitempty"`
		ConvertedType  string         `json:"convertedtype,omitempty"`
		RepetitionType RepetitionType `json:"repetitiontype,omitempty"`
		Encoding       string         `json:"encoding,omitempty"`
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

func NewParquetAccumulator() *ParquetSchemaAccumulator {
	return &ParquetSchemaAccumulator{
		schema: ParquetSchema{
			TagStructs: SchemaTag{
				Name:           "parquet_go_root",
				RepetitionType: Required,
			},
		},
		rows: table.New[any](),
	}
}

// WriteRow appends the row, registering any keys not seen before. Keys are
// visited in lexical order so column discovery is deterministic. A key whose
// type cannot be inferred yet (nil, or a list of only nils) is left out of
// the row until a typed value shows up for it.
func (pa *ParquetSchemaAccumulator) WriteRow(row map[string]any) error {
	if pa.numRows > 0 {
		pa.rows.NextRow()
	}
	pa.numRows++

	for _, key := range utils.SortedKeys(row) {
		val := row[key]
		if _, exists := pa.rows.ColumnIndex(key); !exists {
			fieldSchema := pa.getParquetSchema(key, val)
			if fieldSchema == nil {
				continue
			}
			pa.schema.Fields = append(pa.schema.Fields, fieldSchema)
			pa.rows.RegisterColumn(key)
		}

		if err := pa.rows.Set(key, val); err != nil {
			return fmt.Errorf("error in rows.Set: %w", err)
		}
	}
	return nil
}

// getParquetSchema returns the Type and ConvertedType
func (pa *ParquetSchemaAccumulator) getParquetSchema(key string, item any) *ParquetSchema {
	if item == nil {
		return nil
	}
	schema := &ParquetSchema{
		TagStructs: SchemaTag{
			Name:           key,
			RepetitionType: Optional,
		},
	}
	reflectType := reflect.TypeOf(item)
	if reflectType.Kind() == reflect.Ptr {
		reflectType = reflectType.Elem()
	}

	switch reflectType.Kind() {
	case reflect.Slice:
		val := reflect.ValueOf(item)
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return nil
			}
			val = val.Elem()
		}
		var element any
		for i := 0; i < val.Len(); i++ {
			if el := val.Index(i); !isNilValue(el) {
				element = el.Interface()
				break
			}
		}
		if element == nil {
			return nil
		}
		elementSchema := pa.getParquetSchema("Element", element)
		if elementSchema == nil {
			return nil
		}
		schema.TagStructs.Type = "LIST"
		schema.Fields = append(schema.Fields, elementSchema)
	case reflect.String:
		schema.TagStructs.Type = "BYTE_ARRAY"
		schema.TagStructs.ConvertedType = "UTF8"
		schema.TagStructs.Encoding = "PLAIN"
	case reflect.Bool:
		schema.TagStructs.Type = "BOOLEAN"
	default:
		// Float otherwise since we can't tell the difference in JSON
		schema.TagStructs.Type = "DOUBLE"
	}

	return schema
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map:
		return v.IsNil()
	}
	return !v.IsValid()
}

func (pa *ParquetSchemaAccumulator) GetColumnNames() []string {
	return pa.rows.Columns()
}

func (pa *ParquetSchemaAccumulator) NumRows() int {
	return pa.numRows
}

// GetRow returns the row as a map of every current column, columns the row
// never had are nil
func (pa *ParquetSchemaAccumulator) GetRow(row int) (map[string]any, error) {
	if err := pa.rows.FillRowToEnd(row); err != nil {
		return nil, fmt.Errorf("error in FillRowToEnd: %w", err)
	}
	m := make(map[string]any, pa.rows.NumColumns())
	for _, col := range pa.rows.Columns() {
		v, err := pa.rows.GetAt(row, col)
		if err != nil {
			return nil, fmt.Errorf("error in GetAt: %w", err)
		}
		m[col] = v
	}
	return m, nil
}

func (ps *ParquetSchema) GetType() string {
	switch ps.TagStructs.Type {
	case "BYTE_ARRAY":
		return "string"
	case "DOUBLE":
		return "float"
	case "BOOLEAN":
		return "bool"
	case "LIST":
		return fmt.Sprintf("list(%s)", ps.Fields[0].GetType())
	default:
		return "unknown"
	}
}

// GetColumnTypes returns the types of columns in the same order, either `string`, `float`, `bool`, or `list(x)` (recursive)
func (pa *ParquetSchemaAccumulator) GetColumnTypes() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.GetType())
	}
	return cols
}

// ToParquetJSONSchema recursively converts
func (ps *ParquetSchema) ToParquetJSONSchema() *ParquetJSONSchema {
	var tagArr []string
	if ps.TagStructs.Type != "" {
		tagArr = append(tagArr, "type="+ps.TagStructs.Type)
	}
	if ps.TagStructs.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+ps.TagStructs.ConvertedType)
	}
	if ps.TagStructs.Encoding != "" {
		tagArr = append(tagArr, "encoding="+ps.TagStructs.Encoding)
	}
	if ps.TagStructs.Name != "" {
		tagArr = append(tagArr, "name="+ps.TagStructs.Name)
	}
	if string(ps.TagStructs.RepetitionType) != "" {
		tagArr = append(tagArr, "repetitiontype="+string(ps.TagStructs.RepetitionType))
	}
	var fields []*ParquetJSONSchema
	for _, field := range ps.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	return &ParquetJSONSchema{
		Tag:    strings.Join(tagArr, ", "),
		Fields: fields,
	}
}

// GetSchemaString returns the JSON formatted schema string
func (pa *ParquetSchemaAccumulator) GetSchemaString() (string, error) {
	b, err := json.Marshal(pa.schema.ToParquetJSONSchema())
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}
