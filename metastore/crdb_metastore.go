package metastore

import (
	"context"
	"fmt"
	"time"

	"github.com/danthegoodman1/tablemap/part"
	"github.com/danthegoodman1/tablemap/query"
	"github.com/danthegoodman1/tablemap/utils"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

var (
	ErrMixedPartitions = utils.PermError("merge sources span more than one partition")
)

type (
	CRDBMetaStore struct {
		pool       *pgxpool.Pool
		tryTimeout time.Duration
	}
)

func NewCRDBMetaStore(pool *pgxpool.Pool, tryTimeout time.Duration) *CRDBMetaStore {
	return &CRDBMetaStore{
		pool:       pool,
		tryTimeout: tryTimeout,
	}
}

func insertPart(ctx context.Context, q *query.Queries, p part.Part, colTypes []string) error {
	err := q.InsertFile(ctx, query.InsertFileParams{
		Namespace: p.Namespace,
		Enabled:   p.Enabled,
		Partition: p.Partition,
		Name:      p.Name,
		Bytes:     p.Bytes,
		Rows:      p.Rows,
		Columns:   utils.ArrayOrEmpty(p.Columns),
	})
	if err != nil {
		return fmt.Errorf("error in InsertFile: %w", err)
	}

	err = q.InsertColumns(ctx, query.InsertColumnsParams{
		Namespace: p.Namespace,
		ColNames:  utils.ArrayOrEmpty(p.Columns),
		ColTypes:  utils.ArrayOrEmpty(colTypes),
	})
	if err != nil {
		return fmt.Errorf("error in InsertColumns: %w", err)
	}
	return nil
}

func (cms *CRDBMetaStore) InsertPart(ctx context.Context, p part.Part, colTypes []string) error {
	return utils.ReliableExecInTx(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, tx pgx.Tx) error {
		return insertPart(ctx, query.New(tx), p, colTypes)
	})
}

func (cms *CRDBMetaStore) ListNamespaces(ctx context.Context) (namespaces []string, err error) {
	err = utils.ReliableExec(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, conn *pgxpool.Conn) (err error) {
		namespaces, err = query.New(conn).ListNamespaces(ctx)
		return
	})
	return
}

func (cms *CRDBMetaStore) GetColumns(ctx context.Context, namespace string) ([]part.Column, error) {
	var columns []part.Column
	err := utils.ReliableExec(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, conn *pgxpool.Conn) error {
		cols, err := query.New(conn).GetColumns(ctx, namespace)
		if err != nil {
			return fmt.Errorf("error in GetColumns: %w", err)
		}
		columns = columns[:0]
		for _, col := range cols {
			columns = append(columns, part.Column{
				Name: col.Col,
				Type: col.Type,
			})
		}
		return nil
	})
	return columns, err
}

func (cms *CRDBMetaStore) SelectPartsForMerging(ctx context.Context, namespace string, partition *string, maxBytes int64, maxParts int32) ([]part.Part, error) {
	logger := zerolog.Ctx(ctx)
	var files []query.SelectFilesForMergingRow
	err := utils.ReliableExec(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, conn *pgxpool.Conn) (err error) {
		files, err = query.New(conn).SelectFilesForMerging(ctx, query.SelectFilesForMergingParams{
			Namespace: namespace,
			MaxBytes:  maxBytes,
			MaxFiles:  maxParts,
			Partition: partition,
		})
		return
	})
	if err != nil {
		return nil, fmt.Errorf("error in SelectFilesForMerging: %w", err)
	}

	parts := make([]part.Part, 0, len(files))
	for _, file := range files {
		parts = append(parts, knownFileToPart(file))
	}
	if len(parts) > 0 {
		logger.Debug().Str("partition", parts[0].Partition).Int("selected", len(parts)).Msg("selected parts for merging")
	}
	return parts, nil
}

func (cms *CRDBMetaStore) CommitMerge(ctx context.Context, merged part.Part, colTypes []string, sources []part.Part) error {
	var names []string
	for _, source := range sources {
		if source.Partition != merged.Partition || source.Namespace != merged.Namespace {
			return ErrMixedPartitions
		}
		names = append(names, source.Name)
	}

	return utils.ReliableExecInTx(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, tx pgx.Tx) error {
		q := query.New(tx)
		if err := insertPart(ctx, q, merged, colTypes); err != nil {
			return err
		}

		err := q.SetFileStates(ctx, query.SetFileStatesParams{
			Enabled:   false,
			Namespace: merged.Namespace,
			Partition: merged.Partition,
			Names:     names,
		})
		if err != nil {
			return fmt.Errorf("error in SetFileStates: %w", err)
		}
		return nil
	})
}

func (cms *CRDBMetaStore) Shutdown(_ context.Context) error {
	cms.pool.Close()
	return nil
}

func knownFileToPart(file query.KnownFile) part.Part {
	return part.Part{
		Namespace: file.Namespace,
		Partition: file.Partition,
		Name:      file.Name,
		Enabled:   file.Enabled,
		Bytes:     file.Bytes,
		Rows:      file.Rows,
		Columns:   file.Columns,
		CreatedAt: file.CreatedAt,
	}
}
