package http_server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danthegoodman1/gojsonutils"
	"github.com/danthegoodman1/tablemap/parquet_accumulator"
	"github.com/danthegoodman1/tablemap/partitioner"
	"github.com/danthegoodman1/tablemap/table"
	"github.com/danthegoodman1/tablemap/utils"
)

const maxNDJSONLineBytes = 4 * 1024 * 1024

type (
	// PartitionData holds the rows of one partition of an insert
	PartitionData struct {
		Accumulator *parquet_accumulator.ParquetSchemaAccumulator
	}
)

var (
	ErrNotFlatMap  = errors.New("not a flat map")
	ErrLineNotJSON = errors.New("line was not a JSON object")
)

// parseNDJSON decodes one JSON object per non-empty line
func parseNDJSON(s string) ([]map[string]any, error) {
	var rows []map[string]any
	ndJSONScanner := bufio.NewScanner(strings.NewReader(s))
	ndJSONScanner.Buffer(make([]byte, 0, 64*1024), maxNDJSONLineBytes)
	lineNum := 0
	for ndJSONScanner.Scan() {
		lineNum++
		line := strings.TrimSpace(ndJSONScanner.Text())
		if line == "" {
			continue
		}
		var raw any
		err := json.Unmarshal([]byte(line), &raw)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s", ErrLineNotJSON, lineNum, err)
		}
		jsonMap, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: line %d", ErrLineNotJSON, lineNum)
		}
		rows = append(rows, jsonMap)
	}
	if err := ndJSONScanner.Err(); err != nil {
		return nil, fmt.Errorf("error in ndJSONScanner.Scan: %w", err)
	}
	return rows, nil
}

func flattenRow(row map[string]any) (map[string]any, error) {
	flat, err := gojsonutils.Flatten(row, nil)
	if err != nil {
		return nil, fmt.Errorf("error in gojsonutils.Flatten: %w", err)
	}
	flatMap, ok := flat.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %+v", ErrNotFlatMap, flat)
	}
	return flatMap, nil
}

// partitionRows flattens every row and writes it to the accumulator of its
// partition. Rows are staged in one table for the request so partition
// columns are read by name from the staged row. Each partition discovers its
// own columns, so partitions only carry the columns their rows actually had.
func partitionRows(rows []map[string]any, plans []partitioner.PartitionPlan) (map[string]*PartitionData, error) {
	parts := make(map[string]*PartitionData)
	staged := table.New[any]()
	for i, row := range rows {
		flatMap, err := flattenRow(row)
		if err != nil {
			return nil, fmt.Errorf("error flattening row %d: %w", i, err)
		}

		if i > 0 {
			staged.NextRow()
		}
		keys := utils.SortedKeys(flatMap)
		staged.RegisterColumns(keys...)
		for _, key := range keys {
			if err := staged.Set(key, flatMap[key]); err != nil {
				return nil, fmt.Errorf("error staging row %d: %w", i, err)
			}
		}

		partID, err := partitioner.GetRowPartition(partitioner.TableRowGetter(staged, staged.Cursor()), plans)
		if err != nil {
			return nil, fmt.Errorf("error getting partition for row %d: %w", i, err)
		}

		p, exists := parts[partID]
		if !exists {
			p = &PartitionData{
				Accumulator: parquet_accumulator.NewParquetAccumulator(),
			}
			parts[partID] = p
		}

		if err := p.Accumulator.WriteRow(flatMap); err != nil {
			return nil, fmt.Errorf("error in WriteRow for row %d: %w", i, err)
		}
	}
	return parts, nil
}

// isUserIngestError reports errors caused by the request body
func isUserIngestError(err error) bool {
	return errors.Is(err, ErrLineNotJSON) || errors.Is(err, ErrNotFlatMap) || partitioner.IsUserError(err)
}
