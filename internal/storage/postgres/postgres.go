// Package postgres stores instruments, holdings, inflation rows and
// simulation reports in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"robo-advisor-lab/internal/observability"
	"robo-advisor-lab/internal/storage"
)

const (
	applicationName = "robo-advisor-lab"

	// SQLSTATE 23505.
	uniqueViolation = "23505"
)

// Pool is the shared connection pool handed to every store.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to dsn and verifies the connection.
// Pool limits come from the DSN (pool_max_conns and friends).
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// translate maps driver errors onto the storage sentinels and wraps the rest
// with the failing operation.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return storage.ErrDuplicateKey
	}
	return fmt.Errorf("%s: %w", op, err)
}

// observe records one store call. A miss is an answer, not a failure.
func observe(operation string, start time.Time, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		err = nil
	}
	observability.RecordDBQuery("postgres", operation, time.Since(start).Seconds(), err)
}
