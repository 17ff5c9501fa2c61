package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
)

type (
	DiskDataStore struct {
		rootPath string
	}
)

func NewDiskDataStore(rootPath string) (*DiskDataStore, error) {
	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	dds := &DiskDataStore{
		rootPath: rootPath,
	}

	return dds, nil
}

func (dds *DiskDataStore) fullPath(path string) string {
	return filepath.Join(dds.rootPath, filepath.FromSlash(path))
}

func (dds *DiskDataStore) WriteFile(_ context.Context, path string, r io.Reader) (int64, error) {
	fullPath := dds.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("error in os.MkdirAll: %w", err)
	}

	// Write to a temp file first so readers never see a partial file
	tmpPath := fullPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("error in os.Create: %w", err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return n, fmt.Errorf("error in io.Copy: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("error in f.Close: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return n, fmt.Errorf("error in os.Rename: %w", err)
	}
	logger.Debug().Str("path", fullPath).Int64("bytes", n).Msg("wrote file to disk")
	return n, nil
}

func (dds *DiskDataStore) OpenParquetFile(_ context.Context, path string) (source.ParquetFile, error) {
	pf, err := local.NewLocalFileReader(dds.fullPath(path))
	if err != nil {
		return nil, fmt.Errorf("error in local.NewLocalFileReader: %w", err)
	}
	return pf, nil
}

func (dds *DiskDataStore) ReadFile(_ context.Context, path string) ([]byte, error) {
	b, err := os.ReadFile(dds.fullPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error in os.ReadFile: %w", err)
	}
	return b, nil
}

func (dds *DiskDataStore) Shutdown(_ context.Context) error {
	return nil
}
