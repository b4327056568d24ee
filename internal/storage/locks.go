package db

import (
	"context"
	"fmt"

	"github.com/lueurxax/kenter-news-bot/internal/core/errors"
)

// TryLockCategory takes the session advisory lock that allows one pipeline
// run per category. It returns errors.ErrLockNotAcquired when another process
// holds it. The returned release func must be called when the run ends.
func (db *DB) TryLockCategory(ctx context.Context, category string) (func(), error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool

	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1, hashtext($2))`, categoryRunLockSpace, category).Scan(&acquired); err != nil {
		conn.Release()
		return nil, fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return nil, fmt.Errorf("category %q: %w", category, errors.ErrLockNotAcquired)
	}

	return func() {
		// A fresh context: the run context is usually cancelled by now.
		//nolint:errcheck // the lock is dropped with the session anyway
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1, hashtext($2))`, categoryRunLockSpace, category)

		conn.Release()
	}, nil
}
