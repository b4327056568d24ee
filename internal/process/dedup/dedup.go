package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
)

// Defaults for the storage-backed checks.
const (
	DefaultKeywordCooldown     = 4 * time.Hour
	DefaultSimilarityThreshold = 0.92
)

// Repository is the storage surface the deduplicator reads.
type Repository interface {
	// ExistingLinks returns the subset of links already present in the live table.
	ExistingLinks(ctx context.Context, links []string) (map[string]bool, error)
	// KeywordsUsedSince returns the keywords of the category's live items created at or after since.
	KeywordsUsedSince(ctx context.Context, category string, since time.Time) ([]string, error)
	// FindSimilarLiveItem returns the id of a live item in category whose title
	// embedding is more similar than threshold, or "" when there is none.
	FindSimilarLiveItem(ctx context.Context, category string, embedding []float32, threshold float32) (string, error)
}

// Config configures a Deduplicator.
type Config struct {
	Batch               Options
	KeywordCooldown     time.Duration
	SimilarityThreshold float32
}

// DefaultConfig returns the default batch options, a 4 hour keyword cooldown
// and a 0.92 title similarity threshold.
func DefaultConfig() Config {
	return Config{
		Batch:               DefaultOptions(),
		KeywordCooldown:     DefaultKeywordCooldown,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Deduplicator filters candidates against the batch itself and the live table.
type Deduplicator struct {
	repo   Repository
	cfg    Config
	now    func() time.Time
	logger *zerolog.Logger
}

// Option customizes a Deduplicator.
type Option func(*Deduplicator)

// WithClock replaces time.Now for the keyword cooldown window.
func WithClock(now func() time.Time) Option {
	return func(d *Deduplicator) {
		d.now = now
	}
}

func New(repo Repository, cfg Config, logger *zerolog.Logger, opts ...Option) *Deduplicator {
	d := &Deduplicator{
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Filter returns the candidates worth inserting into category and the rest
// with their drop reasons. Storage errors abort the whole filter so that
// nothing unchecked reaches the live table.
func (d *Deduplicator) Filter(ctx context.Context, category string, items []domain.LiveItem) ([]domain.LiveItem, []Dropped, error) {
	kept, dropped := FilterBatch(items, d.cfg.Batch)

	kept, more, err := d.dropExistingLinks(ctx, kept)
	if err != nil {
		return nil, nil, err
	}

	dropped = append(dropped, more...)

	kept, more, err = d.dropRecentKeywords(ctx, category, kept)
	if err != nil {
		return nil, nil, err
	}

	dropped = append(dropped, more...)

	kept, more, err = d.dropSimilarTitles(ctx, category, kept)
	if err != nil {
		return nil, nil, err
	}

	dropped = append(dropped, more...)

	for _, dr := range dropped {
		observability.ItemsRejected.WithLabelValues(string(dr.Reason)).Inc()
		d.logger.Debug().
			Str(logKeyCategory, category).
			Str(logKeySkippedID, dr.Item.Link).
			Str(logKeyReason, string(dr.Reason)).
			Str(logKeyDuplicateOf, dr.DuplicateOf).
			Msg("Candidate dropped")
	}

	return kept, dropped, nil
}

func (d *Deduplicator) dropExistingLinks(ctx context.Context, items []domain.LiveItem) ([]domain.LiveItem, []Dropped, error) {
	if len(items) == 0 {
		return items, nil, nil
	}

	links := make([]string, len(items))
	for i, it := range items {
		links[i] = it.Link
	}

	existing, err := d.repo.ExistingLinks(ctx, links)
	if err != nil {
		return nil, nil, fmt.Errorf("check existing links: %w", err)
	}

	return partition(items, func(it domain.LiveItem) (Reason, string, bool) {
		if existing[it.Link] {
			return ReasonExistingLink, it.Link, true
		}

		return "", "", false
	})
}

func (d *Deduplicator) dropRecentKeywords(ctx context.Context, category string, items []domain.LiveItem) ([]domain.LiveItem, []Dropped, error) {
	if len(items) == 0 || d.cfg.KeywordCooldown <= 0 {
		return items, nil, nil
	}

	used, err := d.RecentKeywords(ctx, category)
	if err != nil {
		return nil, nil, err
	}

	return partition(items, func(it domain.LiveItem) (Reason, string, bool) {
		k := NormalizeKeyword(it.Keyword)
		if k != "" && used[k] {
			return ReasonRecentKeyword, it.Keyword, true
		}

		return "", "", false
	})
}

// RecentKeywords returns the normalized keywords used in category within the
// cooldown window.
func (d *Deduplicator) RecentKeywords(ctx context.Context, category string) (map[string]bool, error) {
	used := make(map[string]bool)
	if d.cfg.KeywordCooldown <= 0 {
		return used, nil
	}

	keywords, err := d.repo.KeywordsUsedSince(ctx, category, d.now().Add(-d.cfg.KeywordCooldown))
	if err != nil {
		return nil, fmt.Errorf("load recent keywords: %w", err)
	}

	for _, k := range keywords {
		if n := NormalizeKeyword(k); n != "" {
			used[n] = true
		}
	}

	return used, nil
}

// IsKeywordRecent reports whether keyword was used in category within the cooldown window.
func (d *Deduplicator) IsKeywordRecent(ctx context.Context, category, keyword string) (bool, error) {
	used, err := d.RecentKeywords(ctx, category)
	if err != nil {
		return false, err
	}

	return used[NormalizeKeyword(keyword)], nil
}

func (d *Deduplicator) dropSimilarTitles(ctx context.Context, category string, items []domain.LiveItem) ([]domain.LiveItem, []Dropped, error) {
	if len(items) == 0 || d.cfg.SimilarityThreshold <= 0 {
		return items, nil, nil
	}

	ptrs := make([]*domain.LiveItem, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}

	batch := DeduplicateSimilar(ptrs, d.cfg.SimilarityThreshold, d.logger)

	kept := make([]domain.LiveItem, 0, len(batch.Items))

	var dropped []Dropped

	for _, it := range ptrs {
		if dupOf, ok := batch.DuplicateMap[it.ID]; ok {
			dropped = append(dropped, Dropped{Item: *it, Reason: ReasonSimilarTitle, DuplicateOf: dupOf})

			continue
		}

		if len(it.Embedding) > 0 {
			similarID, err := d.repo.FindSimilarLiveItem(ctx, category, it.Embedding, d.cfg.SimilarityThreshold)
			if err != nil {
				return nil, nil, fmt.Errorf("find similar live item: %w", err)
			}

			if similarID != "" {
				dropped = append(dropped, Dropped{Item: *it, Reason: ReasonSimilarTitle, DuplicateOf: similarID})

				continue
			}
		}

		kept = append(kept, *it)
	}

	return kept, dropped, nil
}

func partition(items []domain.LiveItem, drop func(domain.LiveItem) (Reason, string, bool)) ([]domain.LiveItem, []Dropped, error) {
	kept := make([]domain.LiveItem, 0, len(items))

	var dropped []Dropped

	for _, it := range items {
		if reason, dupOf, ok := drop(it); ok {
			dropped = append(dropped, Dropped{Item: it, Reason: reason, DuplicateOf: dupOf})

			continue
		}

		kept = append(kept, it)
	}

	return kept, dropped, nil
}
