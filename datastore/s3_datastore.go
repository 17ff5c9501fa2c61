package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/danthegoodman1/tablemap/s3_helper"
	s3_pq "github.com/xitongsys/parquet-go-source/s3"
	"github.com/xitongsys/parquet-go/source"
)

type (
	S3DataStore struct {
		bucket   string
		s3Client *s3.S3
	}

	countingReader struct {
		r io.Reader
		n int64
	}
)

func NewS3DataStore(bucket string) (*S3DataStore, error) {
	s3Client, err := s3_helper.NewS3Client()
	if err != nil {
		return nil, fmt.Errorf("error in NewS3Client: %w", err)
	}
	return &S3DataStore{
		bucket:   bucket,
		s3Client: s3Client,
	}, nil
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

func (sds *S3DataStore) WriteFile(ctx context.Context, path string, r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	_, err := s3_helper.WriteBytesToS3(ctx, sds.bucket, path, cr, nil)
	if err != nil {
		return cr.n, fmt.Errorf("error in WriteBytesToS3: %w", err)
	}
	return cr.n, nil
}

func (sds *S3DataStore) OpenParquetFile(ctx context.Context, path string) (source.ParquetFile, error) {
	r, err := s3_pq.NewS3FileReaderWithParams(ctx, s3_pq.S3FileReaderParams{
		Bucket:   sds.bucket,
		Key:      path,
		S3Client: sds.s3Client,
	})
	if err != nil {
		return nil, fmt.Errorf("error in NewS3FileReaderWithParams: %w", err)
	}
	return r, nil
}

func (sds *S3DataStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	b, err := s3_helper.ReadBytesFromS3(ctx, sds.bucket, path)
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error in ReadBytesFromS3: %w", err)
	}
	return b, nil
}

func (sds *S3DataStore) Shutdown(_ context.Context) error {
	return nil
}
