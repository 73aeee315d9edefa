// Package postgres keeps the transactional side of the lab: raw sale
// rows and customer records, read back by the ranking engine.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL code for a violated unique
// constraint. The stores map it to storage.ErrDuplicateKey.
const uniqueViolation = "23505"

// Pool is the shared pgxpool handle injected into the sale and
// customer stores.
type Pool struct {
	*pgxpool.Pool
}

// NewPool opens a connection pool for dsn and pings it once, so a bad
// DSN fails at startup rather than on the first query.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// isUniqueViolation reports whether err is a violated unique constraint.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
