package sources

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
)

// ErrAllSourcesFailed is returned when every search failed and nothing was collected.
var ErrAllSourcesFailed = errors.New("all sources failed")

const (
	defaultMaxAge     = 24 * time.Hour
	searchConcurrency = 4
)

// MultiSource fans a category's queries out to every enabled source.
type MultiSource struct {
	sources []Source
	maxAge  time.Duration
	perCall int
	logger  *zerolog.Logger
	now     func() time.Time
}

// NewMultiSource keeps only enabled sources. maxAge <= 0 uses 24h.
func NewMultiSource(sources []Source, maxAge time.Duration, perCall int, logger *zerolog.Logger) *MultiSource {
	enabled := make([]Source, 0, len(sources))

	for _, s := range sources {
		if s != nil && s.Enabled() {
			enabled = append(enabled, s)
		}
	}

	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}

	return &MultiSource{sources: enabled, maxAge: maxAge, perCall: perCall, logger: logger, now: time.Now}
}

// Sources returns the names of the enabled sources.
func (m *MultiSource) Sources() []string {
	names := make([]string, 0, len(m.sources))
	for _, s := range m.sources {
		names = append(names, s.Name())
	}

	return names
}

// Collect searches every query of the category on every source. Results are
// merged by link (first seen wins), entries older than maxAge are dropped and
// the rest is returned newest first. Entries without a publish time are kept.
func (m *MultiSource) Collect(ctx context.Context, category domain.Category) ([]domain.Headline, error) {
	var (
		mu        sync.Mutex
		results   = make([][]domain.Headline, len(category.Queries)*len(m.sources))
		failures  int
		lastError error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)

	for qi, query := range category.Queries {
		for si, src := range m.sources {
			slot := qi*len(m.sources) + si

			g.Go(func() error {
				headlines, err := src.Search(gctx, Request{Query: query, Feeds: category.Feeds, Limit: m.perCall})
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}

					observability.SourceErrors.WithLabelValues(src.Name()).Inc()

					m.logger.Warn().Err(err).
						Str("source", src.Name()).
						Str("query", query).
						Msg("source search failed")

					mu.Lock()
					failures++
					lastError = err
					mu.Unlock()

					return nil
				}

				observability.HeadlinesFetched.WithLabelValues(src.Name(), category.Name).Add(float64(len(headlines)))

				results[slot] = headlines

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := m.merge(results)

	if len(merged) == 0 && failures > 0 && failures == len(results) {
		return nil, errors.Join(ErrAllSourcesFailed, lastError)
	}

	return merged, nil
}

func (m *MultiSource) merge(results [][]domain.Headline) []domain.Headline {
	cutoff := m.now().Add(-m.maxAge)
	seen := make(map[string]bool)

	var merged []domain.Headline

	for _, batch := range results {
		for _, h := range batch {
			key := headlineKey(h)
			if key == "" || seen[key] {
				continue
			}

			if !h.PublishedAt.IsZero() && h.PublishedAt.Before(cutoff) {
				continue
			}

			seen[key] = true
			merged = append(merged, h)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	return merged
}
