package retention

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

type fakeRepo struct {
	items    map[string][]domain.LiveItem
	archive  map[string]domain.ArchiveEntry
	retainFn func() error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:   make(map[string][]domain.LiveItem),
		archive: make(map[string]domain.ArchiveEntry),
	}
}

func (f *fakeRepo) RetainCategory(_ context.Context, category string,
	decide func(items []domain.LiveItem) ([]string, []domain.RankUpdate)) error {
	if f.retainFn != nil {
		if err := f.retainFn(); err != nil {
			return err
		}
	}

	deleteIDs, updates := decide(f.items[category])

	drop := make(map[string]bool, len(deleteIDs))
	for _, id := range deleteIDs {
		drop[id] = true
	}

	ranks := make(map[string]int, len(updates))
	for _, u := range updates {
		ranks[u.ID] = u.Rank
	}

	kept := make([]domain.LiveItem, 0, len(f.items[category]))

	for _, it := range f.items[category] {
		if drop[it.ID] {
			continue
		}

		if r, ok := ranks[it.ID]; ok {
			it.Rank = r
		}

		kept = append(kept, it)
	}

	f.items[category] = kept

	return nil
}

func (f *fakeRepo) ListAllLiveItems(context.Context) ([]domain.LiveItem, error) {
	var all []domain.LiveItem

	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		all = append(all, f.items[k]...)
	}

	return all, nil
}

func (f *fakeRepo) UpsertArchiveEntries(_ context.Context, entries []domain.ArchiveEntry) ([]string, error) {
	var fresh []string

	for _, e := range entries {
		if _, ok := f.archive[e.OriginalLink]; !ok {
			fresh = append(fresh, e.OriginalLink)
		}

		f.archive[e.OriginalLink] = e
	}

	return fresh, nil
}

func newTestManager(repo Repository, policy Policy, opts ...Option) *Manager {
	logger := zerolog.Nop()
	opts = append(opts, WithClock(func() time.Time { return testNow }))

	return NewManager(repo, policy, &logger, opts...)
}

func TestManager_ManageSlots(t *testing.T) {
	repo := newFakeRepo()
	repo.items["K-Pop"] = []domain.LiveItem{
		item("old", 9, 30*time.Hour),
		item("a", 8, time.Hour),
		item("b", 2, 2*time.Hour),
		item("c", 6, 3*time.Hour),
	}

	m := newTestManager(repo, Policy{MaxItems: 2, TTL: 24 * time.Hour})

	res, err := m.ManageSlots(context.Background(), "K-Pop")
	require.NoError(t, err)

	assert.Equal(t, Result{
		Category:       "K-Pop",
		Before:         4,
		EvictedByAge:   1,
		EvictedByScore: 1,
		Reranked:       2,
		Remaining:      2,
	}, res)

	require.Len(t, repo.items["K-Pop"], 2)

	byID := map[string]int{}
	for _, it := range repo.items["K-Pop"] {
		byID[it.ID] = it.Rank
	}

	assert.Equal(t, map[string]int{"a": 1, "c": 2}, byID)
}

func TestManager_ManageSlots_CategoryLimit(t *testing.T) {
	repo := newFakeRepo()
	repo.items["K-Movie"] = []domain.LiveItem{
		item("a", 1, time.Hour), item("b", 2, time.Hour), item("c", 3, time.Hour),
	}

	m := newTestManager(repo, Policy{MaxItems: 30, TTL: time.Hour}, WithCategoryLimits(map[string]int{"K-Movie": 1}))

	res, err := m.ManageSlots(context.Background(), "K-Movie")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, "c", repo.items["K-Movie"][0].ID)
	assert.Equal(t, 30, m.PolicyFor("K-Pop").MaxItems)
}

func TestManager_ManageSlots_Error(t *testing.T) {
	repo := newFakeRepo()
	sentinel := errors.New("lock timeout")
	repo.retainFn = func() error { return sentinel }

	m := newTestManager(repo, DefaultPolicy())

	_, err := m.ManageSlots(context.Background(), "K-Pop")
	require.ErrorIs(t, err, sentinel)
}

func TestManager_Archive_ReportsOnlyNewEntries(t *testing.T) {
	repo := newFakeRepo()
	repo.items["K-Pop"] = []domain.LiveItem{
		{ID: "1", Category: "K-Pop", Link: "https://x/1", Score: 9, Rank: 1},
		{ID: "2", Category: "K-Pop", Link: "https://x/2", Score: 3, Rank: 8},
	}

	m := newTestManager(repo, DefaultPolicy())

	res, err := m.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Candidates)
	require.Len(t, res.New, 1)
	assert.Equal(t, "https://x/1", res.New[0].OriginalLink)

	res, err = m.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Candidates)
	assert.Empty(t, res.New)
	assert.Len(t, repo.archive, 1)
}
