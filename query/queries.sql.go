package query

import (
	"context"
)

const insertFile = `
INSERT INTO known_files (namespace, enabled, partition, name, bytes, rows, columns)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertFileParams struct {
	Namespace string
	Enabled   bool
	Partition string
	Name      string
	Bytes     int64
	Rows      int64
	Columns   []string
}

func (q *Queries) InsertFile(ctx context.Context, arg InsertFileParams) error {
	_, err := q.db.Exec(ctx, insertFile,
		arg.Namespace,
		arg.Enabled,
		arg.Partition,
		arg.Name,
		arg.Bytes,
		arg.Rows,
		arg.Columns,
	)
	return err
}

const insertColumns = `
INSERT INTO known_columns (namespace, col, type)
SELECT $1, unnest($2::TEXT[]), unnest($3::TEXT[])
ON CONFLICT (namespace, col) DO NOTHING
`

type InsertColumnsParams struct {
	Namespace string
	ColNames  []string
	ColTypes  []string
}

func (q *Queries) InsertColumns(ctx context.Context, arg InsertColumnsParams) error {
	_, err := q.db.Exec(ctx, insertColumns, arg.Namespace, arg.ColNames, arg.ColTypes)
	return err
}

const getColumns = `
SELECT namespace, col, type, created_at
FROM known_columns
WHERE namespace = $1
ORDER BY created_at, col
`

func (q *Queries) GetColumns(ctx context.Context, namespace string) ([]KnownColumn, error) {
	rows, err := q.db.Query(ctx, getColumns, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []KnownColumn
	for rows.Next() {
		var i KnownColumn
		if err := rows.Scan(
			&i.Namespace,
			&i.Col,
			&i.Type,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listNamespaces = `
SELECT DISTINCT namespace
FROM known_columns
ORDER BY namespace
`

func (q *Queries) ListNamespaces(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listNamespaces)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var namespace string
		if err := rows.Scan(&namespace); err != nil {
			return nil, err
		}
		items = append(items, namespace)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const selectFilesForMerging = `
WITH target AS (
	SELECT partition
	FROM known_files
	WHERE namespace = $1
	AND enabled = true
	AND bytes < $2
	AND ($4::TEXT IS NULL OR partition = $4)
	GROUP BY partition
	HAVING count(*) >= 2
	ORDER BY partition
	LIMIT 1
)
SELECT namespace, partition, name, enabled, bytes, rows, columns, created_at, updated_at
FROM known_files
WHERE namespace = $1
AND enabled = true
AND bytes < $2
AND partition = (SELECT partition FROM target)
ORDER BY bytes
LIMIT $3
`

type SelectFilesForMergingParams struct {
	Namespace string
	MaxBytes  int64
	MaxFiles  int32
	// Restricts the selection to this partition when set, otherwise the first
	// partition with at least two candidate files is used
	Partition *string
}

type SelectFilesForMergingRow = KnownFile

func (q *Queries) SelectFilesForMerging(ctx context.Context, arg SelectFilesForMergingParams) ([]SelectFilesForMergingRow, error) {
	rows, err := q.db.Query(ctx, selectFilesForMerging, arg.Namespace, arg.MaxBytes, arg.MaxFiles, arg.Partition)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SelectFilesForMergingRow
	for rows.Next() {
		var i SelectFilesForMergingRow
		if err := rows.Scan(
			&i.Namespace,
			&i.Partition,
			&i.Name,
			&i.Enabled,
			&i.Bytes,
			&i.Rows,
			&i.Columns,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setFileStates = `
UPDATE known_files
SET enabled = $1, updated_at = now()
WHERE namespace = $2
AND partition = $3
AND name = ANY($4::TEXT[])
`

type SetFileStatesParams struct {
	Enabled   bool
	Namespace string
	Partition string
	Names     []string
}

func (q *Queries) SetFileStates(ctx context.Context, arg SetFileStatesParams) error {
	_, err := q.db.Exec(ctx, setFileStates, arg.Enabled, arg.Namespace, arg.Partition, arg.Names)
	return err
}
