// Package retention keeps each category's live table bounded: expired items go
// first, then the lowest scored, and the survivors are re-ranked by score.
package retention

import (
	"sort"
	"time"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// Default policy values.
const (
	DefaultMaxItems        = 30
	DefaultTTL             = 24 * time.Hour
	DefaultArchiveMinScore = 7.0
	DefaultArchiveTopRank  = 3
)

// EvictionReason explains why a live item was removed.
type EvictionReason string

const (
	ReasonAge   EvictionReason = "age"
	ReasonScore EvictionReason = "score"
)

// Policy bounds a category's live items.
type Policy struct {
	// MaxItems is the per-category cap. Zero or less disables eviction.
	MaxItems int
	TTL      time.Duration

	// ArchiveMinScore selects items for the archive regardless of rank.
	ArchiveMinScore float32
	// ArchiveTopRank also archives ranks 1..ArchiveTopRank. Zero disables it.
	ArchiveTopRank int
}

// DefaultPolicy returns the 30 items / 24 hours / score 7 policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxItems:        DefaultMaxItems,
		TTL:             DefaultTTL,
		ArchiveMinScore: DefaultArchiveMinScore,
		ArchiveTopRank:  DefaultArchiveTopRank,
	}
}

// Eviction is a single item scheduled for deletion.
type Eviction struct {
	ID     string
	Reason EvictionReason
}

// Plan is the outcome of PlanEviction. Survivors are ordered by their new rank.
type Plan struct {
	Evictions   []Eviction
	Survivors   []domain.LiveItem
	RankUpdates []domain.RankUpdate
}

// EvictedIDs returns the ids of every evicted item.
func (p Plan) EvictedIDs() []string {
	ids := make([]string, len(p.Evictions))
	for i, e := range p.Evictions {
		ids[i] = e.ID
	}

	return ids
}

// Count returns how many items were evicted for reason.
func (p Plan) Count(reason EvictionReason) int {
	n := 0

	for _, e := range p.Evictions {
		if e.Reason == reason {
			n++
		}
	}

	return n
}

// PlanEviction decides which items of one category to delete and how to rank
// the rest. It never mutates items.
//
// When there are more than MaxItems items, those older than TTL are evicted
// oldest first until the limit is met; items with a zero CreatedAt count as
// infinitely old. If that is not enough, the lowest scored survivors are
// evicted, older first on equal scores.
func PlanEviction(items []domain.LiveItem, now time.Time, policy Policy) Plan {
	sorted := make([]domain.LiveItem, len(items))
	copy(sorted, items)
	sortOldestFirst(sorted)

	var plan Plan

	survivors := sorted

	if policy.MaxItems > 0 && len(sorted) > policy.MaxItems {
		survivors, plan.Evictions = evictExpired(sorted, now.Add(-policy.TTL), policy.MaxItems)

		if len(survivors) > policy.MaxItems {
			var byScore []Eviction

			survivors, byScore = evictLowestScored(survivors, policy.MaxItems)
			plan.Evictions = append(plan.Evictions, byScore...)
		}
	}

	plan.Survivors, plan.RankUpdates = Rerank(survivors)

	return plan
}

// Rerank orders items by score descending (older first on ties) and returns
// them with fresh ranks, plus the updates for items whose rank changed.
func Rerank(items []domain.LiveItem) ([]domain.LiveItem, []domain.RankUpdate) {
	ranked := make([]domain.LiveItem, len(items))
	copy(ranked, items)
	sortOldestFirst(ranked)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	var updates []domain.RankUpdate

	for i := range ranked {
		rank := i + 1
		if ranked[i].Rank != rank {
			updates = append(updates, domain.RankUpdate{ID: ranked[i].ID, Rank: rank})
			ranked[i].Rank = rank
		}
	}

	return ranked, updates
}

func evictExpired(sorted []domain.LiveItem, cutoff time.Time, maxItems int) ([]domain.LiveItem, []Eviction) {
	remaining := len(sorted)
	survivors := make([]domain.LiveItem, 0, len(sorted))

	var evictions []Eviction

	for _, item := range sorted {
		if remaining > maxItems && isExpired(item, cutoff) {
			evictions = append(evictions, Eviction{ID: item.ID, Reason: ReasonAge})
			remaining--

			continue
		}

		survivors = append(survivors, item)
	}

	return survivors, evictions
}

func evictLowestScored(survivors []domain.LiveItem, maxItems int) ([]domain.LiveItem, []Eviction) {
	byScore := make([]domain.LiveItem, len(survivors))
	copy(byScore, survivors)

	// survivors are oldest first, so the stable sort keeps older items ahead on ties.
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].Score < byScore[j].Score
	})

	excess := len(byScore) - maxItems
	evicted := make(map[string]struct{}, excess)
	evictions := make([]Eviction, 0, excess)

	for _, item := range byScore[:excess] {
		evicted[item.ID] = struct{}{}
		evictions = append(evictions, Eviction{ID: item.ID, Reason: ReasonScore})
	}

	kept := make([]domain.LiveItem, 0, maxItems)

	for _, item := range survivors {
		if _, ok := evicted[item.ID]; !ok {
			kept = append(kept, item)
		}
	}

	return kept, evictions
}

func isExpired(item domain.LiveItem, cutoff time.Time) bool {
	return item.CreatedAt.IsZero() || item.CreatedAt.Before(cutoff)
}

func sortOldestFirst(items []domain.LiveItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].CreatedAt, items[j].CreatedAt
		if !a.Equal(b) {
			return a.Before(b)
		}

		return items[i].ID < items[j].ID
	})
}
