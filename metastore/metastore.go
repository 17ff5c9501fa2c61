package metastore

import (
	"context"

	"github.com/danthegoodman1/tablemap/part"
)

type (
	MetaStore interface {
		// InsertPart records a newly written part and the columns it introduced
		InsertPart(ctx context.Context, p part.Part, colTypes []string) error

		ListNamespaces(ctx context.Context) ([]string, error)
		// GetColumns lists every column known to a namespace
		GetColumns(ctx context.Context, namespace string) ([]part.Column, error)

		// SelectPartsForMerging returns up to maxParts enabled parts of a single
		// partition that are smaller than maxBytes, smallest first. A nil
		// partition picks the first partition in order with at least two
		// candidates, so a lone small part never blocks later partitions.
		SelectPartsForMerging(ctx context.Context, namespace string, partition *string, maxBytes int64, maxParts int32) ([]part.Part, error)
		// CommitMerge records the merged part and disables the source parts atomically
		CommitMerge(ctx context.Context, merged part.Part, colTypes []string, sources []part.Part) error

		Shutdown(ctx context.Context) error
	}
)
