package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// GetRankings returns a category's current chart ordered by rank.
func (db *DB) GetRankings(ctx context.Context, category string) ([]domain.Ranking, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT category, rank, keyword, meta_info, score, delta, image_url, updated_at
		FROM live_rankings
		WHERE category = $1
		ORDER BY rank
	`, category)
	if err != nil {
		return nil, fmt.Errorf("get rankings: %w", err)
	}

	rankings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Ranking, error) {
		var (
			r        domain.Ranking
			imageURL pgtype.Text
			updated  pgtype.Timestamptz
		)

		err := row.Scan(&r.Category, &r.Rank, &r.Keyword, &r.MetaInfo, &r.Score, &r.Delta, &imageURL, &updated)
		r.ImageURL = fromText(imageURL)
		r.UpdatedAt = fromTimestamptz(updated)

		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect rankings: %w", err)
	}

	return rankings, nil
}

// ReplaceRankings swaps a category's chart in one transaction.
func (db *DB) ReplaceRankings(ctx context.Context, category string, rankings []domain.Ranking) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf(errFmtBeginTx, err)
	}

	//nolint:errcheck // rollback after commit is a no-op
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM live_rankings WHERE category = $1`, category); err != nil {
		return fmt.Errorf("delete rankings: %w", err)
	}

	rows := make([][]any, 0, len(rankings))

	for _, r := range rankings {
		rows = append(rows, []any{
			category, safeIntToInt32(r.Rank), SanitizeUTF8(r.Keyword), SanitizeUTF8(r.MetaInfo),
			r.Score, r.Delta, toText(r.ImageURL), toTimestamptz(r.UpdatedAt),
		})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"live_rankings"},
		[]string{"category", "rank", "keyword", "meta_info", "score", "delta", "image_url", "updated_at"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("insert rankings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(errFmtCommitTx, err)
	}

	return nil
}
