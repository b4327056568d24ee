package retention

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func item(id string, score float32, age time.Duration) domain.LiveItem {
	return domain.LiveItem{
		ID:        id,
		Category:  "K-Pop",
		Score:     score,
		CreatedAt: testNow.Add(-age),
	}
}

func ids(items []domain.LiveItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}

	return out
}

func sortedStrings(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)

	return out
}

func TestPlanEviction(t *testing.T) {
	policy := Policy{MaxItems: 3, TTL: 24 * time.Hour}

	tests := []struct {
		name        string
		items       []domain.LiveItem
		wantEvicted []string
		wantAge     int
		wantScore   int
		wantOrder   []string
	}{
		{
			name:      "under limit evicts nothing",
			items:     []domain.LiveItem{item("a", 5, time.Hour), item("b", 9, 48*time.Hour)},
			wantOrder: []string{"b", "a"},
		},
		{
			name: "exactly at limit evicts nothing even when expired",
			items: []domain.LiveItem{
				item("a", 5, 30*time.Hour), item("b", 6, 40*time.Hour), item("c", 7, 50*time.Hour),
			},
			wantOrder: []string{"c", "b", "a"},
		},
		{
			name: "expired items go first, oldest first, only down to the limit",
			items: []domain.LiveItem{
				item("fresh1", 1, time.Hour),
				item("old1", 9, 30*time.Hour),
				item("old2", 9, 50*time.Hour),
				item("old3", 9, 40*time.Hour),
				item("fresh2", 2, 2*time.Hour),
			},
			wantEvicted: []string{"old2", "old3"},
			wantAge:     2,
			wantOrder:   []string{"old1", "fresh2", "fresh1"},
		},
		{
			name: "no expired items falls back to lowest score",
			items: []domain.LiveItem{
				item("a", 8, time.Hour),
				item("b", 4, 2*time.Hour),
				item("c", 6, 3*time.Hour),
				item("d", 5, 4*time.Hour),
			},
			wantEvicted: []string{"b"},
			wantScore:   1,
			wantOrder:   []string{"a", "c", "d"},
		},
		{
			name: "age then score",
			items: []domain.LiveItem{
				item("old", 10, 30*time.Hour),
				item("a", 8, time.Hour),
				item("b", 4, 2*time.Hour),
				item("c", 6, 3*time.Hour),
				item("d", 5, 4*time.Hour),
			},
			wantEvicted: []string{"old", "b"},
			wantAge:     1,
			wantScore:   1,
			wantOrder:   []string{"a", "c", "d"},
		},
		{
			name: "equal scores evict the older item",
			items: []domain.LiveItem{
				item("newer", 5, time.Hour),
				item("older", 5, 5*time.Hour),
				item("high1", 9, 2*time.Hour),
				item("high2", 8, 3*time.Hour),
			},
			wantEvicted: []string{"older"},
			wantScore:   1,
			wantOrder:   []string{"high1", "high2", "newer"},
		},
		{
			name: "zero created_at is treated as infinitely old",
			items: []domain.LiveItem{
				{ID: "unknown", Score: 10},
				item("a", 1, time.Hour),
				item("b", 2, 2*time.Hour),
				item("c", 3, 3*time.Hour),
			},
			wantEvicted: []string{"unknown"},
			wantAge:     1,
			wantOrder:   []string{"c", "b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanEviction(tt.items, testNow, policy)

			assert.Equal(t, sortedStrings(tt.wantEvicted), sortedStrings(plan.EvictedIDs()))
			assert.Equal(t, tt.wantAge, plan.Count(ReasonAge))
			assert.Equal(t, tt.wantScore, plan.Count(ReasonScore))
			assert.Equal(t, tt.wantOrder, ids(plan.Survivors))

			want := len(tt.items)
			if want > policy.MaxItems {
				want = policy.MaxItems
			}

			assert.Len(t, plan.Survivors, want)
		})
	}
}

func TestPlanEviction_DoesNotMutateInput(t *testing.T) {
	items := []domain.LiveItem{
		item("a", 1, time.Hour), item("b", 2, 30*time.Hour), item("c", 3, 2*time.Hour),
	}
	orig := append([]domain.LiveItem(nil), items...)

	PlanEviction(items, testNow, Policy{MaxItems: 1, TTL: 24 * time.Hour})

	assert.Equal(t, orig, items)
}

func TestPlanEviction_SurvivorCountInvariant(t *testing.T) {
	for n := 0; n <= 45; n += 5 {
		items := make([]domain.LiveItem, n)
		for i := range items {
			items[i] = item(fmt.Sprintf("id-%02d", i), float32(i%7), time.Duration(i)*time.Hour)
		}

		plan := PlanEviction(items, testNow, DefaultPolicy())

		want := n
		if want > DefaultMaxItems {
			want = DefaultMaxItems
		}

		require.Len(t, plan.Survivors, want, "n=%d", n)
		require.Len(t, plan.Evictions, n-want, "n=%d", n)

		for i, s := range plan.Survivors {
			require.Equal(t, i+1, s.Rank)
		}
	}
}

func TestPlanEviction_DisabledLimit(t *testing.T) {
	items := []domain.LiveItem{item("a", 1, 48*time.Hour), item("b", 2, 72*time.Hour)}

	plan := PlanEviction(items, testNow, Policy{MaxItems: 0, TTL: time.Hour})

	assert.Empty(t, plan.Evictions)
	assert.Len(t, plan.Survivors, 2)
}

func TestRerank_OnlyChangedRanksReported(t *testing.T) {
	items := []domain.LiveItem{
		{ID: "a", Score: 9, Rank: 1, CreatedAt: testNow},
		{ID: "b", Score: 8, Rank: 3, CreatedAt: testNow},
		{ID: "c", Score: 7, Rank: 2, CreatedAt: testNow},
		{ID: "d", Score: 1, Rank: 0, CreatedAt: testNow},
	}

	ranked, updates := Rerank(items)

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(ranked))
	assert.Equal(t, []domain.RankUpdate{
		{ID: "b", Rank: 2},
		{ID: "c", Rank: 3},
		{ID: "d", Rank: 4},
	}, updates)
}

func TestRerank_TiesPreferOlder(t *testing.T) {
	items := []domain.LiveItem{
		item("newer", 5, time.Hour),
		item("older", 5, 3*time.Hour),
	}

	ranked, _ := Rerank(items)

	assert.Equal(t, []string{"older", "newer"}, ids(ranked))
}
