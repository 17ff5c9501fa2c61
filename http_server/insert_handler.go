package http_server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danthegoodman1/tablemap/part"
	"github.com/danthegoodman1/tablemap/partitioner"
	"github.com/danthegoodman1/tablemap/utils"
	"github.com/rs/zerolog"
)

type (
	InsertReqBody struct {
		Namespace string `validate:"required"`
		// Line-delimited JSON (NDJSON)
		RowsString *string
		// Array of JSON
		Rows        []map[string]any
		Partitioner []partitioner.PartitionPlan `validate:"dive"`
	}

	InsertStats struct {
		NumRows      int64
		NumFiles     int64
		BytesWritten int64
		TimeMS       int64
		Partitions   []string
	}
)

var ErrNoRows = errors.New("no rows found")

func (s *HTTPServer) InsertHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	logger := zerolog.Ctx(ctx)

	start := time.Now()

	var reqBody InsertReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.BadRequest(err)
	}

	rows := reqBody.Rows
	if reqBody.RowsString != nil {
		ndRows, err := parseNDJSON(*reqBody.RowsString)
		if err != nil {
			if isUserIngestError(err) {
				return c.BadRequest(err)
			}
			return c.InternalError(err, "error parsing NDJSON rows")
		}
		rows = append(rows, ndRows...)
	}

	if len(rows) == 0 {
		return c.BadRequest(ErrNoRows)
	}

	parts, err := partitionRows(rows, reqBody.Partitioner)
	if err != nil {
		if isUserIngestError(err) {
			return c.BadRequest(err)
		}
		return c.InternalError(err, "error partitioning rows")
	}

	stats := InsertStats{
		NumFiles: int64(len(parts)),
	}

	for _, partID := range utils.SortedKeys(parts) {
		partData := parts[partID]
		logger := logger.With().Str("partition", partID).Logger()

		// Convert rows to a parquet file
		var b bytes.Buffer
		numRows, err := partData.Accumulator.WriteParquet(&b)
		if err != nil {
			return c.InternalError(err, "error in WriteParquet")
		}

		p := part.Part{
			Namespace: reqBody.Namespace,
			Partition: partID,
			Name:      utils.GenKSortedID("") + ".parquet",
			Enabled:   true,
			Rows:      numRows,
			Columns:   partData.Accumulator.GetColumnNames(),
		}

		p.Bytes, err = s.DataStore.WriteFile(ctx, p.Path(), &b)
		if err != nil {
			return c.InternalError(err, "error writing part to datastore")
		}

		err = s.MetaStore.InsertPart(ctx, p, partData.Accumulator.GetColumnTypes())
		if err != nil {
			return c.InternalError(err, "error inserting part")
		}

		logger.Debug().Str("fileName", p.Name).Int64("rows", p.Rows).Int64("bytes", p.Bytes).Msg("wrote part")

		stats.NumRows += numRows
		stats.BytesWritten += p.Bytes
		stats.Partitions = append(stats.Partitions, partID)
	}

	stats.TimeMS = time.Since(start).Milliseconds()

	return c.JSON(http.StatusAccepted, stats)
}
