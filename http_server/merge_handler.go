package http_server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danthegoodman1/tablemap/parquet_accumulator"
	"github.com/danthegoodman1/tablemap/part"
	"github.com/danthegoodman1/tablemap/utils"
	"github.com/rs/zerolog"
)

type (
	MergeReqBody struct {
		Namespace string `validate:"required"`
		// The partition path, minus the leading `ns={Namespace}/`.
		//
		// Ex: `year=2022/month=12/day=30`
		Partition *string
		// The max file size in bytes that will be considered for merging.
		//
		// Default 1GB.
		MaxPreMergeFileBytes *int64 `validate:"omitempty,gt=0"`
		// Max number of files to merge at once.
		//
		// Default 4.
		MaxMergeFiles *int32 `validate:"omitempty,gt=1"`
		// How many seconds before the merge will time out.
		//
		// Default `60`.
		MaxRuntimeSec *int64 `validate:"omitempty,gt=0"`
	}

	MergeStats struct {
		FilesMerged int64
		RowsMerged  int64
		// The size of the file after merging
		PostMergeBytes int64
		// Columns of the merged file
		Columns []string
		TimeMS  int64
		// The partition path, minus the leading `ns={Namespace}/`.
		//
		// Ex: `year=2022/month=12/day=30`
		PartitionsMerged []string
	}
)

func (s *HTTPServer) MergeHandler(c *CustomContext) error {
	var reqBody MergeReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.BadRequest(err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*time.Duration(utils.Deref(reqBody.MaxRuntimeSec, 60)))
	defer cancel()

	mergeID := utils.GenRandomShortID()
	logger := zerolog.Ctx(ctx).With().Str("mergeID", mergeID).Str("namespace", reqBody.Namespace).Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().Msg("running merge handler")

	start := time.Now()

	st := time.Now()
	sources, err := s.MetaStore.SelectPartsForMerging(ctx, reqBody.Namespace, reqBody.Partition, utils.Deref(reqBody.MaxPreMergeFileBytes, 1_000_000_000), utils.Deref(reqBody.MaxMergeFiles, 4))
	if err != nil {
		return c.InternalError(err, "error getting files for merging")
	}
	logger.Debug().Msgf("got files to merge in %s", time.Since(st))
	if len(sources) < 2 {
		logger.Debug().Msg("not enough files to merge")
		return c.NoContent(http.StatusNoContent)
	}

	res, merged, err := s.mergeParts(ctx, sources)
	if err != nil {
		return c.InternalError(err, "error merging parts")
	}

	res.TimeMS = time.Since(start).Milliseconds()
	logger.Debug().Interface("response", res).Str("fileName", merged.Name).Msg("merged files")

	return c.JSON(http.StatusOK, res)
}

// mergeParts reads the source parts into one accumulator, writes the merged
// part, and swaps it in for the sources in the metastore. Source parts may have
// different column sets, rows from earlier parts are filled to the full column
// set when written.
func (s *HTTPServer) mergeParts(ctx context.Context, sources []part.Part) (MergeStats, part.Part, error) {
	logger := zerolog.Ctx(ctx)
	var res MergeStats

	accumulator := parquet_accumulator.NewParquetAccumulator()
	for _, source := range sources {
		st := time.Now()
		logger := logger.With().Str("fileName", source.Name).Str("partition", source.Partition).Logger()
		logger.Debug().Msg("reading file from datastore")

		pf, err := s.DataStore.OpenParquetFile(ctx, source.Path())
		if err != nil {
			return res, part.Part{}, fmt.Errorf("error opening part %s: %w", source.Path(), err)
		}
		rows, err := accumulator.ReadParquet(pf)
		pf.Close()
		if err != nil {
			return res, part.Part{}, fmt.Errorf("error reading part %s: %w", source.Path(), err)
		}

		res.RowsMerged += rows
		res.FilesMerged++
		logger.Debug().Int64("rows", rows).Msgf("read file to merge in %s", time.Since(st))
	}

	var bMerged bytes.Buffer
	numRows, err := accumulator.WriteParquet(&bMerged)
	if err != nil {
		return res, part.Part{}, fmt.Errorf("error in WriteParquet: %w", err)
	}

	merged := part.Part{
		Namespace: sources[0].Namespace,
		Partition: sources[0].Partition,
		Name:      utils.GenKSortedID("") + ".parquet",
		Enabled:   true,
		Rows:      numRows,
		Columns:   accumulator.GetColumnNames(),
	}

	merged.Bytes, err = s.DataStore.WriteFile(ctx, merged.Path(), &bMerged)
	if err != nil {
		return res, merged, fmt.Errorf("error writing merged part: %w", err)
	}

	err = s.MetaStore.CommitMerge(ctx, merged, accumulator.GetColumnTypes(), sources)
	if err != nil {
		return res, merged, fmt.Errorf("error updating meta store: %w", err)
	}

	res.PostMergeBytes = merged.Bytes
	res.Columns = merged.Columns
	res.PartitionsMerged = []string{merged.Partition}
	return res, merged, nil
}
