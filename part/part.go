package part

import "time"

type (
	// Part is a single parquet file written for a partition of a namespace
	Part struct {
		Namespace string
		// The partition path, e.g. `y=2022/m=12/d=30`. Empty when unpartitioned.
		Partition string
		// File name within the partition
		Name    string
		Enabled bool
		Bytes   int64
		Rows    int64
		// Column names in the file, in table column order
		Columns   []string
		CreatedAt time.Time
	}

	// Column is a column known to a namespace
	Column struct {
		Name string
		// string, float, bool, or list(x)
		Type string
	}
)

// Path returns the object path of the part, relative to the datastore root
func (p Part) Path() string {
	return FilePath(p.Namespace, p.Partition, p.Name)
}

func FilePath(namespace, partition, name string) string {
	if partition == "" {
		return "ns=" + namespace + "/" + name
	}
	return "ns=" + namespace + "/" + partition + "/" + name
}
