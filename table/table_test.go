package table

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegisterColumnsIdempotent(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("a", "b")
	tm.RegisterColumn("a")
	tm.RegisterColumns("b", "c", "a")

	if !reflect.DeepEqual(tm.Columns(), []string{"a", "b", "c"}) {
		t.Fatalf("got columns %+v", tm.Columns())
	}
	if tm.NumColumns() != 3 {
		t.Fatal("expected 3 columns")
	}
	pos, ok := tm.ColumnIndex("c")
	if !ok || pos != 2 {
		t.Fatalf("bad position for c: %d %v", pos, ok)
	}
	// Registration never touches rows
	if tm.RowLen(0) != 0 {
		t.Fatal("registering columns extended a row")
	}
}

func TestColumnsIsACopy(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("a", "b")
	cols := tm.Columns()
	cols[0] = "z"
	if tm.Columns()[0] != "a" {
		t.Fatal("Columns aliased internal storage")
	}
}

func TestSetGet(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("name", "age")

	if err := tm.Set("age", "32"); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("name", "bob"); err != nil {
		t.Fatal(err)
	}
	v, err := tm.Get("name")
	if err != nil {
		t.Fatal(err)
	}
	if v != "bob" {
		t.Fatalf("got %s", v)
	}

	// Overwrite in place
	if err := tm.Set("name", "alice"); err != nil {
		t.Fatal(err)
	}
	v, err = tm.Get("name")
	if err != nil {
		t.Fatal(err)
	}
	if v != "alice" {
		t.Fatalf("got %s after overwrite", v)
	}
	if tm.RowLen(0) != 2 {
		t.Fatalf("expected row length 2, got %d", tm.RowLen(0))
	}
}

func TestSetOutOfOrder(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("c0", "c1", "c2", "c3")

	for _, col := range []string{"c1", "c2", "c3"} {
		if err := tm.Set(col, col+"v"); err != nil {
			t.Fatal(err)
		}
	}

	if !reflect.DeepEqual(tm.Rows(), [][]string{{"", "c1v", "c2v", "c3v"}}) {
		t.Fatalf("got rows %+v", tm.Rows())
	}
}

func TestSetSkippingAhead(t *testing.T) {
	tm := New[int]()
	tm.RegisterColumns("a", "b", "c")
	if err := tm.Set("c", 3); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("a", 1); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tm.Rows(), [][]int{{1, 0, 3}}) {
		t.Fatalf("got rows %+v", tm.Rows())
	}
}

func TestCrossRowIsolation(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("a", "b", "c")
	if err := tm.Set("a", "r0"); err != nil {
		t.Fatal(err)
	}
	tm.NextRow()
	if err := tm.Set("c", "r1"); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("a", "r1a"); err != nil {
		t.Fatal(err)
	}

	if tm.RowLen(0) != 3 {
		t.Fatalf("row 0 changed length to %d", tm.RowLen(0))
	}
	v, err := tm.GetAt(0, "a")
	if err != nil {
		t.Fatal(err)
	}
	if v != "r0" {
		t.Fatalf("row 0 changed value to %s", v)
	}
}

func TestWriteSpansAllColumns(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("c0", "c1", "c2", "c3")
	if err := tm.Set("c0", "r1d0"); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("c2", "r1d2"); err != nil {
		t.Fatal(err)
	}

	if tm.RowLen(0) != 4 {
		t.Fatalf("expected row length 4, got %d", tm.RowLen(0))
	}
	v, err := tm.Get("c3")
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Fatalf("expected empty c3, got %q", v)
	}
}

func TestOverwriteAfterNewColumn(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("c0", "c1", "c2", "c3")
	for _, kv := range [][2]string{{"c1", "Something"}, {"c3", "Another thing"}, {"c2", "First thing"}} {
		if err := tm.Set(kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}
	tm.RegisterColumn("c5")
	if err := tm.Set("c0", "First First thing"); err != nil {
		t.Fatal(err)
	}

	expected := [][]string{{"First First thing", "Something", "First thing", "Another thing", ""}}
	if !reflect.DeepEqual(tm.Rows(), expected) {
		t.Fatalf("got rows %+v", tm.Rows())
	}
}

func TestMultipleRowsWithEmptyColumns(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("c0", "c1", "c2", "c3")

	batches := [][][2]string{
		{{"c0", "c0v"}, {"c1", "Something"}, {"c2", "v2"}, {"c3", "32"}},
		{{"c0", "c0v"}, {"c2", "v2"}, {"c3", "32"}},
		{{"c0", "c0v"}, {"c1", "Something"}, {"c2", "v2"}},
	}
	for i, batch := range batches {
		if i > 0 {
			tm.NextRow()
		}
		for _, kv := range batch {
			if err := tm.Set(kv[0], kv[1]); err != nil {
				t.Fatal(err)
			}
		}
	}

	expected := [][]string{
		{"c0v", "Something", "v2", "32"},
		{"c0v", "", "v2", "32"},
		{"c0v", "Something", "v2", ""},
	}
	if !reflect.DeepEqual(tm.Rows(), expected) {
		t.Fatalf("got rows %+v", tm.Rows())
	}
}

func TestStructValues(t *testing.T) {
	type measurement struct {
		val int32
	}
	ms := []measurement{{30}, {100}, {1230}, {800}}

	tm := New[measurement]()
	tm.RegisterColumns("c0", "c1", "c2", "c3")
	if err := tm.Set("c0", ms[0]); err != nil {
		t.Fatal(err)
	}
	for i, col := range []string{"c1", "c2", "c3"} {
		if err := tm.Set(col, ms[i+1]); err != nil {
			t.Fatal(err)
		}
	}

	if !reflect.DeepEqual(tm.Rows(), [][]measurement{ms}) {
		t.Fatalf("got rows %+v", tm.Rows())
	}
}

func TestGapSemantics(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("c0", "c1", "c2", "c3")
	if err := tm.Set("c0", "zero"); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("c2", "two"); err != nil {
		t.Fatal(err)
	}
	tm.RegisterColumn("c4")

	_, err := tm.GetAt(0, "c4")
	if !errors.Is(err, ErrNoDataForRow) {
		t.Fatalf("expected ErrNoDataForRow, got %v", err)
	}
	// c3 existed when the row was written, so it reads as the zero value
	v, err := tm.GetAt(0, "c3")
	if err != nil || v != "" {
		t.Fatalf("expected empty c3, got %q %v", v, err)
	}

	if err := tm.FillRowToEnd(0); err != nil {
		t.Fatal(err)
	}
	v, err = tm.GetAt(0, "c4")
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Fatalf("expected default, got %q", v)
	}
	if !reflect.DeepEqual(tm.Rows()[0], []string{"zero", "", "two", "", ""}) {
		t.Fatalf("fill altered written values: %+v", tm.Rows()[0])
	}
}

func TestFillIsIdempotent(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("a", "b")
	if err := tm.Set("a", "x"); err != nil {
		t.Fatal(err)
	}
	tm.FillToEnd()
	tm.FillToEnd()
	if tm.RowLen(0) != 2 {
		t.Fatalf("expected length 2, got %d", tm.RowLen(0))
	}

	// Fill only reaches the column count at call time
	tm.RegisterColumn("c")
	if _, err := tm.Get("c"); !errors.Is(err, ErrNoDataForRow) {
		t.Fatalf("expected ErrNoDataForRow after new column, got %v", err)
	}
	tm.FillToEnd()
	if _, err := tm.Get("c"); err != nil {
		t.Fatal(err)
	}
}

func TestNextRowDoesNotFill(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumns("a")
	if err := tm.Set("a", "x"); err != nil {
		t.Fatal(err)
	}
	tm.RegisterColumn("b")
	tm.NextRow()

	if tm.Cursor() != 1 || tm.NumRows() != 2 {
		t.Fatalf("cursor %d rows %d", tm.Cursor(), tm.NumRows())
	}
	if _, err := tm.GetAt(0, "b"); !errors.Is(err, ErrNoDataForRow) {
		t.Fatalf("expected ErrNoDataForRow, got %v", err)
	}
	if err := tm.FillRowToEnd(0); err != nil {
		t.Fatal(err)
	}
	if _, err := tm.GetAt(0, "b"); err != nil {
		t.Fatal(err)
	}
	// New row starts empty
	if _, err := tm.Get("a"); !errors.Is(err, ErrNoDataForRow) {
		t.Fatalf("expected ErrNoDataForRow on fresh row, got %v", err)
	}
}

func TestMultiBatchColumns(t *testing.T) {
	tm := New[string]()

	tm.RegisterColumns("c0", "c1")
	if err := tm.Set("c0", "c0v"); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("c1", "Something"); err != nil {
		t.Fatal(err)
	}
	tm.NextRow()

	tm.RegisterColumns("c4", "c5")
	if err := tm.Set("c4", "v2"); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("c5", "32"); err != nil {
		t.Fatal(err)
	}
	tm.NextRow()

	tm.RegisterColumns("c1", "c5")
	if err := tm.Set("c1", "another"); err != nil {
		t.Fatal(err)
	}
	if err := tm.Set("c5", "mixed"); err != nil {
		t.Fatal(err)
	}

	expected := [][]string{
		{"c0v", "Something"},
		{"", "", "v2", "32"},
		{"", "another", "", "mixed"},
	}
	if !reflect.DeepEqual(tm.Rows(), expected) {
		t.Fatalf("got rows %+v", tm.Rows())
	}
	if !reflect.DeepEqual(tm.Columns(), []string{"c0", "c1", "c4", "c5"}) {
		t.Fatalf("got columns %+v", tm.Columns())
	}
}

func TestUnknownColumn(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumn("a")

	if err := tm.Set("nope", "x"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn on Set, got %v", err)
	}
	if tm.RowLen(0) != 0 {
		t.Fatal("failed Set mutated the row")
	}
	if _, err := tm.Get("nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn on Get, got %v", err)
	}
	for _, row := range []int{-1, 0, 1, 100} {
		if _, err := tm.GetAt(row, "nope"); !errors.Is(err, ErrUnknownColumn) {
			t.Fatalf("expected ErrUnknownColumn on GetAt(%d), got %v", row, err)
		}
	}
}

func TestRowOutOfRange(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumn("a")

	if _, err := tm.GetAt(5, "a"); !errors.Is(err, ErrNoDataForRow) {
		t.Fatalf("expected ErrNoDataForRow, got %v", err)
	}
	if err := tm.FillRowToEnd(5); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}
	if err := tm.FillRowToEnd(-1); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}
}

func TestRowsIsACopy(t *testing.T) {
	tm := New[string]()
	tm.RegisterColumn("a")
	if err := tm.Set("a", "x"); err != nil {
		t.Fatal(err)
	}
	rows := tm.Rows()
	rows[0][0] = "y"
	v, err := tm.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if v != "x" {
		t.Fatal("Rows aliased internal storage")
	}
}

func TestAnyValues(t *testing.T) {
	tm := New[any]()
	tm.RegisterColumns("s", "f", "l")
	if err := tm.Set("l", []any{"hey"}); err != nil {
		t.Fatal(err)
	}
	tm.FillToEnd()
	v, err := tm.Get("s")
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("expected nil default, got %+v", v)
	}
}
