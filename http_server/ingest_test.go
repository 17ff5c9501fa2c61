package http_server

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danthegoodman1/tablemap/partitioner"
)

func TestParseNDJSON(t *testing.T) {
	rows, err := parseNDJSON("{\"a\": 1}\n\n  {\"b\": \"x\"}  \n")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[1]["b"] != "x" {
		t.Fatalf("got row %+v", rows[1])
	}

	_, err = parseNDJSON("{\"a\": 1}\n[1, 2]\n")
	if !errors.Is(err, ErrLineNotJSON) || !isUserIngestError(err) {
		t.Fatalf("expected ErrLineNotJSON, got %v", err)
	}

	_, err = parseNDJSON("{\"a\": \n")
	if !errors.Is(err, ErrLineNotJSON) {
		t.Fatalf("expected ErrLineNotJSON for bad JSON, got %v", err)
	}
}

func TestPartitionRows(t *testing.T) {
	rows := []map[string]any{
		{"ts": "2022-12-30T10:00:00.000Z", "event": "click"},
		{"ts": "2022-12-31T10:00:00.000Z", "user": "bob"},
		{"ts": "2022-12-30T11:00:00.000Z", "user": "alice", "score": 2.0},
	}
	plans := []partitioner.PartitionPlan{{Func: "toDay", Args: []string{"ts"}, As: "d"}}

	parts, err := partitionRows(rows, plans)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d partitions", len(parts))
	}

	d30 := parts["d=30"]
	if d30 == nil || d30.Accumulator.NumRows() != 2 {
		t.Fatalf("bad d=30 partition %+v", d30)
	}
	if !reflect.DeepEqual(d30.Accumulator.GetColumnNames(), []string{"event", "ts", "score", "user"}) {
		t.Fatalf("got d=30 columns %+v", d30.Accumulator.GetColumnNames())
	}

	// Columns of other partitions do not leak in
	d31 := parts["d=31"]
	if d31 == nil || !reflect.DeepEqual(d31.Accumulator.GetColumnNames(), []string{"ts", "user"}) {
		t.Fatalf("bad d=31 partition %+v", d31)
	}

	_, err = partitionRows([]map[string]any{{"nots": 1.0}}, plans)
	if !errors.Is(err, partitioner.ErrMissingColumns) || !isUserIngestError(err) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}

	// ts is known from the first row but absent from the second
	_, err = partitionRows([]map[string]any{{"ts": "2022-12-30T10:00:00.000Z"}, {"user": "bob"}}, plans)
	if !errors.Is(err, partitioner.ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns for a row without ts, got %v", err)
	}
}
