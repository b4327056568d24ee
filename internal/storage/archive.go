package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// UpsertArchiveEntries archives entries keyed by original link. Re-archiving
// refreshes score, summary and rank. It returns the links inserted for the
// first time.
func (db *DB) UpsertArchiveEntries(ctx context.Context, entries []domain.ArchiveEntry) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}

	for _, e := range entries {
		batch.Queue(`
			INSERT INTO search_archive (category, keyword, title, summary, image_url, original_link, score, rank, created_at, archived_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), now())
			ON CONFLICT (original_link) DO UPDATE SET
				title = EXCLUDED.title,
				summary = EXCLUDED.summary,
				image_url = COALESCE(EXCLUDED.image_url, search_archive.image_url),
				score = EXCLUDED.score,
				rank = EXCLUDED.rank,
				archived_at = now()
			RETURNING original_link, (xmax = 0) AS inserted
		`, e.Category, SanitizeUTF8(e.Keyword), SanitizeUTF8(e.Title), SanitizeUTF8(e.Summary),
			toText(e.ImageURL), e.OriginalLink, e.Score, safeIntToInt32(e.Rank), toTimestamptz(e.CreatedAt))
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	var inserted []string

	for range entries {
		var (
			link  string
			isNew bool
		)

		if err := br.QueryRow().Scan(&link, &isNew); err != nil {
			return inserted, fmt.Errorf("upsert archive entry: %w", err)
		}

		if isNew {
			inserted = append(inserted, link)
		}
	}

	return inserted, nil
}

// SearchArchive returns archived entries whose keyword or title contains
// query, newest first. An empty query lists the latest entries.
func (db *DB) SearchArchive(ctx context.Context, query string, limit int) ([]domain.ArchiveEntry, error) {
	if limit <= 0 {
		limit = defaultArchiveLimit
	}

	if limit > maxArchiveLimit {
		limit = maxArchiveLimit
	}

	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"

	rows, err := db.Pool.Query(ctx, `
		SELECT id, category, keyword, title, summary, image_url, original_link, score, rank, created_at, archived_at
		FROM search_archive
		WHERE keyword ILIKE $1 OR title ILIKE $1
		ORDER BY archived_at DESC
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search archive: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ArchiveEntry, error) {
		var (
			e                 domain.ArchiveEntry
			id                pgtype.UUID
			imageURL          pgtype.Text
			created, archived pgtype.Timestamptz
		)

		err := row.Scan(&id, &e.Category, &e.Keyword, &e.Title, &e.Summary, &imageURL,
			&e.OriginalLink, &e.Score, &e.Rank, &created, &archived)
		e.ID = fromUUID(id)
		e.ImageURL = fromText(imageURL)
		e.CreatedAt = fromTimestamptz(created)
		e.ArchivedAt = fromTimestamptz(archived)

		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect archive entries: %w", err)
	}

	return entries, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
