package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	coreerrors "github.com/lueurxax/kenter-news-bot/internal/core/errors"
)

const liveItemColumns = `id, category, keyword, title, summary, link, image_url, score, rank, likes, dislikes, created_at`

// Ranked items first, unranked ones after them by score.
const liveItemRankOrder = `rank = 0, rank, score DESC, created_at DESC`

const (
	listLiveItemsQuery = `
		SELECT ` + liveItemColumns + `
		FROM live_news
		WHERE category = $1
		ORDER BY ` + liveItemRankOrder

	listAllLiveItemsQuery = `
		SELECT ` + liveItemColumns + `
		FROM live_news
		ORDER BY category, ` + liveItemRankOrder
)

func scanLiveItem(row pgx.Row) (domain.LiveItem, error) {
	var (
		item     domain.LiveItem
		id       pgtype.UUID
		imageURL pgtype.Text
		created  pgtype.Timestamptz
	)

	if err := row.Scan(&id, &item.Category, &item.Keyword, &item.Title, &item.Summary, &item.Link,
		&imageURL, &item.Score, &item.Rank, &item.Likes, &item.Dislikes, &created); err != nil {
		return domain.LiveItem{}, err
	}

	item.ID = fromUUID(id)
	item.ImageURL = fromText(imageURL)
	item.CreatedAt = fromTimestamptz(created)

	return item, nil
}

func collectLiveItems(rows pgx.Rows) ([]domain.LiveItem, error) {
	defer rows.Close()

	var items []domain.LiveItem

	for rows.Next() {
		item, err := scanLiveItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan live item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate live items: %w", err)
	}

	return items, nil
}

// ListLiveItems returns a category's live items, ranked first.
func (db *DB) ListLiveItems(ctx context.Context, category string) ([]domain.LiveItem, error) {
	rows, err := db.Pool.Query(ctx, listLiveItemsQuery, category)
	if err != nil {
		return nil, fmt.Errorf("list live items: %w", err)
	}

	return collectLiveItems(rows)
}

// ListAllLiveItems returns every live item grouped by category, each group
// ordered like ListLiveItems.
func (db *DB) ListAllLiveItems(ctx context.Context) ([]domain.LiveItem, error) {
	rows, err := db.Pool.Query(ctx, listAllLiveItemsQuery)
	if err != nil {
		return nil, fmt.Errorf("list all live items: %w", err)
	}

	return collectLiveItems(rows)
}

// UpsertLiveItems inserts items keyed by link. An existing row keeps its id,
// votes and created_at; content and score are refreshed.
func (db *DB) UpsertLiveItems(ctx context.Context, items []domain.LiveItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}

	for _, item := range items {
		var embedding any
		if len(item.Embedding) > 0 {
			embedding = pgvector.NewVector(item.Embedding)
		}

		createdAt := item.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		batch.Queue(`
			INSERT INTO live_news (id, category, keyword, title, summary, link, image_url, score, rank, embedding, created_at)
			VALUES (COALESCE($1, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10::vector, $11)
			ON CONFLICT (link) DO UPDATE SET
				keyword = EXCLUDED.keyword,
				title = EXCLUDED.title,
				summary = EXCLUDED.summary,
				image_url = EXCLUDED.image_url,
				score = EXCLUDED.score,
				embedding = COALESCE(EXCLUDED.embedding, live_news.embedding)
		`, toUUID(item.ID), item.Category, SanitizeUTF8(item.Keyword), SanitizeUTF8(item.Title),
			SanitizeUTF8(item.Summary), item.Link, toText(item.ImageURL), item.Score,
			safeIntToInt32(item.Rank), embedding, createdAt)
	}

	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	saved := 0

	for range items {
		tag, err := br.Exec()
		if err != nil {
			return saved, fmt.Errorf("upsert live item: %w", err)
		}

		saved += int(tag.RowsAffected())
	}

	return saved, nil
}

// RetainCategory runs decide over the category's live items inside a
// transaction holding the category retention lock, then applies its result.
func (db *DB) RetainCategory(ctx context.Context, category string,
	decide func(items []domain.LiveItem) ([]string, []domain.RankUpdate),
) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf(errFmtBeginTx, err)
	}

	//nolint:errcheck // rollback after commit is a no-op
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, hashtext($2))`, categoryRetainLockSpc, category); err != nil {
		return fmt.Errorf("acquire retention lock: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT `+liveItemColumns+`
		FROM live_news
		WHERE category = $1
		ORDER BY created_at, id
		FOR UPDATE
	`, category)
	if err != nil {
		return fmt.Errorf("load live items: %w", err)
	}

	items, err := collectLiveItems(rows)
	if err != nil {
		return err
	}

	evict, updates := decide(items)

	if len(evict) > 0 {
		ids := make([]pgtype.UUID, 0, len(evict))
		for _, id := range evict {
			ids = append(ids, toUUID(id))
		}

		if _, err := tx.Exec(ctx, `DELETE FROM live_news WHERE id = ANY($1::uuid[])`, ids); err != nil {
			return fmt.Errorf("delete evicted items: %w", err)
		}
	}

	if len(updates) > 0 {
		ids := make([]pgtype.UUID, 0, len(updates))
		ranks := make([]int32, 0, len(updates))

		for _, u := range updates {
			ids = append(ids, toUUID(u.ID))
			ranks = append(ranks, safeIntToInt32(u.Rank))
		}

		if _, err := tx.Exec(ctx, `
			UPDATE live_news AS l
			SET rank = u.rank
			FROM unnest($1::uuid[], $2::int[]) AS u(id, rank)
			WHERE l.id = u.id
		`, ids, ranks); err != nil {
			return fmt.Errorf("update ranks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(errFmtCommitTx, err)
	}

	return nil
}

// ExistingLinks returns the links already present in the live table.
func (db *DB) ExistingLinks(ctx context.Context, links []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(links) == 0 {
		return existing, nil
	}

	rows, err := db.Pool.Query(ctx, `SELECT link FROM live_news WHERE link = ANY($1)`, links)
	if err != nil {
		return nil, fmt.Errorf("existing links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}

		existing[link] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	return existing, nil
}

// KeywordsUsedSince returns the keywords of a category's items created at or after since.
func (db *DB) KeywordsUsedSince(ctx context.Context, category string, since time.Time) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT keyword
		FROM live_news
		WHERE category = $1 AND created_at >= $2 AND keyword <> ''
	`, category, since)
	if err != nil {
		return nil, fmt.Errorf("keywords used since: %w", err)
	}

	keywords, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect keywords: %w", err)
	}

	return keywords, nil
}

// FindSimilarLiveItem returns the id of the closest live item of the category
// whose cosine similarity exceeds threshold, or "" when there is none.
func (db *DB) FindSimilarLiveItem(ctx context.Context, category string, embedding []float32, threshold float32) (string, error) {
	if len(embedding) == 0 {
		return "", nil
	}

	var id pgtype.UUID

	err := db.Pool.QueryRow(ctx, `
		SELECT id
		FROM live_news
		WHERE category = $1
		  AND embedding IS NOT NULL
		  AND (embedding <=> $2::vector) < $3
		ORDER BY embedding <=> $2::vector
		LIMIT 1
	`, category, pgvector.NewVector(embedding), float64(1.0-threshold)).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("find similar live item: %w", err)
	}

	return fromUUID(id), nil
}

// Vote increments the likes or dislikes counter and returns both counters.
func (db *DB) Vote(ctx context.Context, id, voteType string) (likes, dislikes int, err error) {
	uid := toUUID(id)
	if !uid.Valid {
		return 0, 0, coreerrors.ErrInvalidID
	}

	var query string

	switch voteType {
	case domain.VoteLikes:
		query = `UPDATE live_news SET likes = likes + 1 WHERE id = $1 RETURNING likes, dislikes`
	case domain.VoteDislikes:
		query = `UPDATE live_news SET dislikes = dislikes + 1 WHERE id = $1 RETURNING likes, dislikes`
	default:
		return 0, 0, fmt.Errorf("vote type %q: %w", voteType, coreerrors.ErrInvalidInput)
	}

	if err := db.Pool.QueryRow(ctx, query, uid).Scan(&likes, &dislikes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, coreerrors.ErrNotFound
		}

		return 0, 0, fmt.Errorf("vote: %w", err)
	}

	return likes, dislikes, nil
}
