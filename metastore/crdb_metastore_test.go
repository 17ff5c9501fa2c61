package metastore

import (
	"context"
	"errors"
	"testing"

	"github.com/danthegoodman1/tablemap/part"
	"github.com/danthegoodman1/tablemap/query"
)

func TestCommitMergeRejectsMixedPartitions(t *testing.T) {
	// Validation runs before any connection is acquired
	cms := NewCRDBMetaStore(nil, 0)
	merged := part.Part{Namespace: "ns", Partition: "d=1", Name: "merged.parquet"}
	err := cms.CommitMerge(context.Background(), merged, nil, []part.Part{
		{Namespace: "ns", Partition: "d=1", Name: "a.parquet"},
		{Namespace: "ns", Partition: "d=2", Name: "b.parquet"},
	})
	if !errors.Is(err, ErrMixedPartitions) {
		t.Fatalf("expected ErrMixedPartitions, got %v", err)
	}
}

func TestKnownFileToPart(t *testing.T) {
	p := knownFileToPart(query.KnownFile{
		Namespace: "ns",
		Partition: "d=1",
		Name:      "a.parquet",
		Enabled:   true,
		Bytes:     10,
		Rows:      2,
		Columns:   []string{"a", "b"},
	})
	if p.Path() != "ns=ns/d=1/a.parquet" || p.Rows != 2 || len(p.Columns) != 2 {
		t.Fatalf("got part %+v", p)
	}
}
