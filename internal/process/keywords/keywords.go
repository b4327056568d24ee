// Package keywords maintains the cross-category trending keyword chart.
package keywords

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
	"github.com/lueurxax/kenter-news-bot/internal/process/dedup"
)

// DefaultLimit is the size of the trending chart.
const DefaultLimit = 10

// Aggregate counts live items per normalized keyword and returns the top
// limit entries ordered by count descending, then keyword ascending. The
// displayed keyword is the first spelling seen for each normalized form.
func Aggregate(items []domain.LiveItem, limit int, now time.Time) []domain.TrendingKeyword {
	counts := make(map[string]int)
	display := make(map[string]string)

	for _, it := range items {
		norm := dedup.NormalizeKeyword(it.Keyword)
		if norm == "" {
			continue
		}

		if _, ok := display[norm]; !ok {
			display[norm] = strings.TrimSpace(it.Keyword)
		}

		counts[norm]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}

		return keys[i] < keys[j]
	})

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]domain.TrendingKeyword, len(keys))
	for i, k := range keys {
		out[i] = domain.TrendingKeyword{
			Keyword:   display[k],
			Count:     counts[k],
			Rank:      i + 1,
			UpdatedAt: now,
		}
	}

	return out
}

// Repository is the storage surface the refresher needs.
type Repository interface {
	ListAllLiveItems(ctx context.Context) ([]domain.LiveItem, error)
	ReplaceTrendingKeywords(ctx context.Context, keywords []domain.TrendingKeyword) error
}

// Refresher rebuilds the trending keyword table from the live table.
type Refresher struct {
	repo   Repository
	limit  int
	now    func() time.Time
	logger *zerolog.Logger
}

func NewRefresher(repo Repository, limit int, logger *zerolog.Logger) *Refresher {
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Refresher{repo: repo, limit: limit, now: time.Now, logger: logger}
}

// Refresh replaces the trending keywords with a fresh aggregate. An empty
// live table leaves the previous chart untouched.
func (r *Refresher) Refresh(ctx context.Context) ([]domain.TrendingKeyword, error) {
	items, err := r.repo.ListAllLiveItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list live items: %w", err)
	}

	trending := Aggregate(items, r.limit, r.now())
	if len(trending) == 0 {
		r.logger.Info().Msg("No keywords to aggregate, keeping previous chart")

		return nil, nil
	}

	if err := r.repo.ReplaceTrendingKeywords(ctx, trending); err != nil {
		return nil, fmt.Errorf("replace trending keywords: %w", err)
	}

	observability.TrendingKeywordsRefreshed.Set(float64(len(trending)))
	r.logger.Info().Int("keywords", len(trending)).Str("top", trending[0].Keyword).Msg("Trending keywords refreshed")

	return trending, nil
}
