package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// SyncCategories upserts the catalog. Categories missing from the catalog are
// kept so their live items and archive stay readable.
func (db *DB) SyncCategories(ctx context.Context, categories []domain.Category) error {
	batch := &pgx.Batch{}

	for _, c := range categories {
		batch.Queue(`
			INSERT INTO categories (name, sort_order, max_items, queries, feeds, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (name) DO UPDATE SET
				sort_order = EXCLUDED.sort_order,
				max_items = EXCLUDED.max_items,
				queries = EXCLUDED.queries,
				feeds = EXCLUDED.feeds,
				updated_at = now()
		`, c.Name, safeIntToInt32(c.SortOrder), safeIntToInt32(c.MaxItems), nonNil(c.Queries), nonNil(c.Feeds))
	}

	if err := db.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("sync categories: %w", err)
	}

	return nil
}

// ListCategories returns the stored categories in rotation order.
func (db *DB) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := db.Pool.Query(ctx, `SELECT name, sort_order, max_items, queries, feeds FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		var c domain.Category
		err := row.Scan(&c.Name, &c.SortOrder, &c.MaxItems, &c.Queries, &c.Feeds)

		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}

	return categories, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
