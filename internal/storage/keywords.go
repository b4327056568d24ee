package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// ReplaceTrendingKeywords swaps the whole trending keyword table.
func (db *DB) ReplaceTrendingKeywords(ctx context.Context, keywords []domain.TrendingKeyword) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf(errFmtBeginTx, err)
	}

	//nolint:errcheck // rollback after commit is a no-op
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM trending_keywords`); err != nil {
		return fmt.Errorf("clear trending keywords: %w", err)
	}

	rows := make([][]any, 0, len(keywords))
	for _, k := range keywords {
		rows = append(rows, []any{safeIntToInt32(k.Rank), SanitizeUTF8(k.Keyword), safeIntToInt32(k.Count), toTimestamptz(k.UpdatedAt)})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"trending_keywords"},
		[]string{"rank", "keyword", "count", "updated_at"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("insert trending keywords: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(errFmtCommitTx, err)
	}

	return nil
}

// ListTrendingKeywords returns the chart ordered by rank.
func (db *DB) ListTrendingKeywords(ctx context.Context) ([]domain.TrendingKeyword, error) {
	rows, err := db.Pool.Query(ctx, `SELECT rank, keyword, count, updated_at FROM trending_keywords ORDER BY rank`)
	if err != nil {
		return nil, fmt.Errorf("list trending keywords: %w", err)
	}

	keywords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TrendingKeyword, error) {
		var (
			k       domain.TrendingKeyword
			updated pgtype.Timestamptz
		)

		err := row.Scan(&k.Rank, &k.Keyword, &k.Count, &updated)
		k.UpdatedAt = fromTimestamptz(updated)

		return k, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect trending keywords: %w", err)
	}

	return keywords, nil
}
