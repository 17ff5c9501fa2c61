package datastore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danthegoodman1/tablemap/parquet_accumulator"
)

func TestDiskDataStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dds, err := NewDiskDataStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	n, err := dds.WriteFile(ctx, "ns=test/d=1/a.txt", bytes.NewReader([]byte("hello")))
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("wrote %d bytes", n)
	}

	b, err := dds.ReadFile(ctx, "ns=test/d=1/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "hello" {
		t.Fatalf("read %s", string(b))
	}

	if _, err := os.Stat(filepath.Join(dds.rootPath, "ns=test", "d=1", "a.txt.tmp")); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}

	if _, err := dds.ReadFile(ctx, "ns=test/d=1/missing.txt"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestDiskDataStoreParquet(t *testing.T) {
	ctx := context.Background()
	dds, err := NewDiskDataStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	a := parquet_accumulator.NewParquetAccumulator()
	for _, row := range []map[string]any{{"a": "x"}, {"b": 2.0}} {
		if err := a.WriteRow(row); err != nil {
			t.Fatal(err)
		}
	}
	var b bytes.Buffer
	if _, err := a.WriteParquet(&b); err != nil {
		t.Fatal(err)
	}
	if _, err := dds.WriteFile(ctx, "ns=test/p.parquet", &b); err != nil {
		t.Fatal(err)
	}

	pf, err := dds.OpenParquetFile(ctx, "ns=test/p.parquet")
	if err != nil {
		t.Fatal(err)
	}
	defer pf.Close()

	read := parquet_accumulator.NewParquetAccumulator()
	n, err := read.ReadParquet(pf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("read %d rows", n)
	}
}
