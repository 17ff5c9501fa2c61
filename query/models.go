package query

import (
	"time"
)

type KnownFile struct {
	Namespace string
	Partition string
	Name      string
	Enabled   bool
	Bytes     int64
	Rows      int64
	Columns   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type KnownColumn struct {
	Namespace string
	Col       string
	Type      string
	CreatedAt time.Time
}
