package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgx"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// IsPermanentDBError reports errors that will fail the same way on retry:
// PermErrors, and postgres class 22 (data exception) and 23 (integrity
// constraint violation) errors.
func IsPermanentDBError(err error) bool {
	if IsPermError(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "22" || pgErr.Code[:2] == "23")
	}
	return false
}

// ReliableExec acquires a connection from the pool and runs f, retrying with
// exponential backoff until f succeeds, a permanent error is returned, or
// tryTimeout elapses.
func ReliableExec(ctx context.Context, pool *pgxpool.Pool, tryTimeout time.Duration, f func(ctx context.Context, conn *pgxpool.Conn) error) error {
	ctx, cancel := context.WithTimeout(ctx, tryTimeout)
	defer cancel()
	logger := zerolog.Ctx(ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		conn, err := pool.Acquire(ctx)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("error acquiring connection, retrying")
			return fmt.Errorf("error in pool.Acquire: %w", err)
		}
		defer conn.Release()

		err = f(ctx, conn)
		if err != nil && IsPermanentDBError(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("error in reliable exec, retrying")
		}
		return err
	}, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
}

// ReliableExecInTx is ReliableExec with f run inside a transaction, CRDB
// serialization retries are handled by crdbpgx.ExecuteTx
func ReliableExecInTx(ctx context.Context, pool *pgxpool.Pool, tryTimeout time.Duration, f func(ctx context.Context, tx pgx.Tx) error) error {
	return ReliableExec(ctx, pool, tryTimeout, func(ctx context.Context, conn *pgxpool.Conn) error {
		return crdbpgx.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
			return f(ctx, tx)
		})
	})
}
