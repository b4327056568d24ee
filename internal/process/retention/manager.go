package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
)

// Log field keys.
const (
	logKeyCategory = "category"
)

// Repository is the storage surface slot management needs.
type Repository interface {
	// RetainCategory loads the category's live items inside a transaction that
	// holds the category lock, calls decide, then deletes the returned ids and
	// writes the rank updates before committing.
	RetainCategory(ctx context.Context, category string,
		decide func(items []domain.LiveItem) ([]string, []domain.RankUpdate)) error
	ListAllLiveItems(ctx context.Context) ([]domain.LiveItem, error)
	// UpsertArchiveEntries returns the original links that were not archived before.
	UpsertArchiveEntries(ctx context.Context, entries []domain.ArchiveEntry) ([]string, error)
}

// Result summarizes one ManageSlots call.
type Result struct {
	Category       string
	Before         int
	EvictedByAge   int
	EvictedByScore int
	Reranked       int
	Remaining      int
}

// ArchiveResult summarizes one Archive call.
type ArchiveResult struct {
	Candidates int
	// New holds the entries archived for the first time.
	New []domain.ArchiveEntry
}

// Manager applies the retention policy against storage.
type Manager struct {
	repo     Repository
	policy   Policy
	maxItems map[string]int
	now      func() time.Time
	logger   *zerolog.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithCategoryLimits overrides MaxItems for individual categories.
func WithCategoryLimits(limits map[string]int) Option {
	return func(m *Manager) {
		for name, limit := range limits {
			if limit > 0 {
				m.maxItems[name] = limit
			}
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(repo Repository, policy Policy, logger *zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		policy:   policy,
		maxItems: make(map[string]int),
		now:      time.Now,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// PolicyFor returns the policy applied to category.
func (m *Manager) PolicyFor(category string) Policy {
	p := m.policy
	if limit, ok := m.maxItems[category]; ok {
		p.MaxItems = limit
	}

	return p
}

// ManageSlots bounds one category's live items and re-ranks the survivors.
func (m *Manager) ManageSlots(ctx context.Context, category string) (Result, error) {
	res := Result{Category: category}
	policy := m.PolicyFor(category)
	now := m.now()

	err := m.repo.RetainCategory(ctx, category, func(items []domain.LiveItem) ([]string, []domain.RankUpdate) {
		plan := PlanEviction(items, now, policy)

		res.Before = len(items)
		res.EvictedByAge = plan.Count(ReasonAge)
		res.EvictedByScore = plan.Count(ReasonScore)
		res.Reranked = len(plan.RankUpdates)
		res.Remaining = len(plan.Survivors)

		return plan.EvictedIDs(), plan.RankUpdates
	})
	if err != nil {
		return Result{Category: category}, fmt.Errorf("manage slots for %s: %w", category, err)
	}

	observability.ItemsEvicted.WithLabelValues(category, string(ReasonAge)).Add(float64(res.EvictedByAge))
	observability.ItemsEvicted.WithLabelValues(category, string(ReasonScore)).Add(float64(res.EvictedByScore))
	observability.LiveItems.WithLabelValues(category).Set(float64(res.Remaining))

	m.logger.Info().
		Str(logKeyCategory, category).
		Int("before", res.Before).
		Int("max_items", policy.MaxItems).
		Int("evicted_age", res.EvictedByAge).
		Int("evicted_score", res.EvictedByScore).
		Int("reranked", res.Reranked).
		Int("remaining", res.Remaining).
		Msg("Slots managed")

	return res, nil
}

// Archive copies every qualifying live item into the archive. Entries are
// keyed by original link, so repeated runs refresh rather than duplicate.
func (m *Manager) Archive(ctx context.Context) (ArchiveResult, error) {
	items, err := m.repo.ListAllLiveItems(ctx)
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("list live items: %w", err)
	}

	entries := SelectForArchive(items, m.policy, m.now())
	if len(entries) == 0 {
		return ArchiveResult{}, nil
	}

	newLinks, err := m.repo.UpsertArchiveEntries(ctx, entries)
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("upsert archive entries: %w", err)
	}

	fresh := make(map[string]struct{}, len(newLinks))
	for _, link := range newLinks {
		fresh[link] = struct{}{}
	}

	res := ArchiveResult{Candidates: len(entries)}

	for _, e := range entries {
		if _, ok := fresh[e.OriginalLink]; ok {
			res.New = append(res.New, e)
			observability.ItemsArchived.WithLabelValues(e.Category).Inc()
		}
	}

	m.logger.Info().
		Int("candidates", res.Candidates).
		Int("new", len(res.New)).
		Msg("Archive updated")

	return res, nil
}
