package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// SaveRawHeadlines records collected headlines, keyed by link.
func (db *DB) SaveRawHeadlines(ctx context.Context, category string, headlines []domain.Headline) error {
	if len(headlines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	for _, h := range headlines {
		link := h.Link
		if link == "" {
			link = h.OriginalLink
		}

		batch.Queue(`
			INSERT INTO raw_news (link, original_link, category, query, source, title, description, image_url, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (link) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				image_url = COALESCE(EXCLUDED.image_url, raw_news.image_url),
				collected_at = now()
		`, link, toText(h.OriginalLink), category, h.Query, h.Source, SanitizeUTF8(h.Title),
			SanitizeUTF8(h.Description), toText(h.ImageURL), toTimestamptz(h.PublishedAt))
	}

	if err := db.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save raw headlines: %w", err)
	}

	return nil
}
