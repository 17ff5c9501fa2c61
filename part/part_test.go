package part

import "testing"

func TestPath(t *testing.T) {
	p := Part{Namespace: "events", Partition: "y=2022/m=12", Name: "abc.parquet"}
	if p.Path() != "ns=events/y=2022/m=12/abc.parquet" {
		t.Fatalf("got path %s", p.Path())
	}
	p.Partition = ""
	if p.Path() != "ns=events/abc.parquet" {
		t.Fatalf("got path %s", p.Path())
	}
}
