package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danthegoodman1/tablemap/gologger"
	"github.com/danthegoodman1/tablemap/utils"
	"github.com/xitongsys/parquet-go/source"
)

var (
	logger = gologger.NewComponentLogger("datastore")

	ErrFileNotFound = errors.New("file not found")
)

type (
	// DataStore holds the parquet files, paths are `ns={namespace}/{partition}/{name}`
	DataStore interface {
		// WriteFile stores the contents of r at path, returning the bytes written
		WriteFile(ctx context.Context, path string, r io.Reader) (int64, error)
		// OpenParquetFile opens a stored file for the parquet reader
		OpenParquetFile(ctx context.Context, path string) (source.ParquetFile, error)
		// ReadFile returns the full contents of a stored file, ErrFileNotFound
		// if nothing is stored at path
		ReadFile(ctx context.Context, path string) ([]byte, error)

		Shutdown(ctx context.Context) error
	}
)

// NewDataStoreFromEnv picks the datastore named by DATASTORE
func NewDataStoreFromEnv() (DataStore, error) {
	switch utils.DATASTORE {
	case "disk":
		return NewDiskDataStore(utils.DISK_DATASTORE_PATH)
	case "s3":
		return NewS3DataStore(utils.S3_BUCKET_NAME)
	default:
		return nil, fmt.Errorf("unknown DATASTORE %q", utils.DATASTORE)
	}
}
