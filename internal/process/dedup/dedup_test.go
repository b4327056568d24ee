package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

type mockRepository struct {
	existing     map[string]bool
	keywords     []string
	similarID    string
	similarCalls int
	since        time.Time
	err          error
}

func (m *mockRepository) ExistingLinks(_ context.Context, links []string) (map[string]bool, error) {
	if m.err != nil {
		return nil, m.err
	}

	out := make(map[string]bool)

	for _, l := range links {
		if m.existing[l] {
			out[l] = true
		}
	}

	return out, nil
}

func (m *mockRepository) KeywordsUsedSince(_ context.Context, _ string, since time.Time) ([]string, error) {
	m.since = since

	return m.keywords, nil
}

func (m *mockRepository) FindSimilarLiveItem(_ context.Context, _ string, _ []float32, _ float32) (string, error) {
	m.similarCalls++

	return m.similarID, nil
}

func newTestDeduplicator(repo Repository, opts ...Option) *Deduplicator {
	logger := zerolog.Nop()

	return New(repo, DefaultConfig(), &logger, opts...)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 2}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestDeduplicator_Filter(t *testing.T) {
	repo := &mockRepository{
		existing: map[string]bool{"https://n/old": true},
		keywords: []string{"아이유 "},
	}
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestDeduplicator(repo, WithClock(func() time.Time { return now }))

	items := []domain.LiveItem{
		candidate("1", "BTS", "https://n/1", "", 8),
		candidate("2", "블랙핑크", "https://n/old", "", 8),
		candidate("3", "아이유", "https://n/3", "", 8),
		candidate("4", "뉴진스", "https://n/4", "", 2),
	}

	kept, dropped, err := d.Filter(context.Background(), "K-Pop", items)
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, keptIDs(kept))
	assert.Equal(t, map[string]Reason{
		"2": ReasonExistingLink,
		"3": ReasonRecentKeyword,
		"4": ReasonLowScore,
	}, droppedReasons(dropped))
	assert.Equal(t, now.Add(-4*time.Hour), repo.since)
	assert.Zero(t, repo.similarCalls, "items without embeddings skip the similarity lookup")
}

func TestDeduplicator_Filter_SimilarTitles(t *testing.T) {
	repo := &mockRepository{}
	d := newTestDeduplicator(repo)

	items := []domain.LiveItem{
		{ID: "1", Keyword: "a", Link: "https://n/1", Score: 8, Embedding: []float32{1, 0, 0}},
		{ID: "2", Keyword: "b", Link: "https://n/2", Score: 8, Embedding: []float32{0.99, 0.01, 0}},
		{ID: "3", Keyword: "c", Link: "https://n/3", Score: 8, Embedding: []float32{0, 1, 0}},
	}

	kept, dropped, err := d.Filter(context.Background(), "K-Pop", items)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3"}, keptIDs(kept))
	require.Len(t, dropped, 1)
	assert.Equal(t, ReasonSimilarTitle, dropped[0].Reason)
	assert.Equal(t, "1", dropped[0].DuplicateOf)
	assert.Equal(t, 2, repo.similarCalls)
}

func TestDeduplicator_Filter_SimilarLiveItem(t *testing.T) {
	repo := &mockRepository{similarID: "live-7"}
	d := newTestDeduplicator(repo)

	items := []domain.LiveItem{
		{ID: "1", Keyword: "a", Link: "https://n/1", Score: 8, Embedding: []float32{1, 0}},
	}

	kept, dropped, err := d.Filter(context.Background(), "K-Pop", items)
	require.NoError(t, err)
	assert.Empty(t, kept)
	require.Len(t, dropped, 1)
	assert.Equal(t, "live-7", dropped[0].DuplicateOf)
}

func TestDeduplicator_Filter_StorageError(t *testing.T) {
	sentinel := errors.New("db down")
	d := newTestDeduplicator(&mockRepository{err: sentinel})

	_, _, err := d.Filter(context.Background(), "K-Pop", []domain.LiveItem{candidate("1", "a", "https://n/1", "", 8)})
	require.ErrorIs(t, err, sentinel)
}

func TestDeduplicator_IsKeywordRecent(t *testing.T) {
	d := newTestDeduplicator(&mockRepository{keywords: []string{"Stray Kids"}})

	recent, err := d.IsKeywordRecent(context.Background(), "K-Pop", "stray  kids")
	require.NoError(t, err)
	assert.True(t, recent)

	recent, err = d.IsKeywordRecent(context.Background(), "K-Pop", "ITZY")
	require.NoError(t, err)
	assert.False(t, recent)
}

func TestDeduplicator_CooldownUsesClock(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 10, 0, 0, time.UTC)
	repo := &mockRepository{}
	d := newTestDeduplicator(repo, WithClock(func() time.Time { return now }))

	_, err := d.IsKeywordRecent(context.Background(), "K-Pop", "aespa")
	require.NoError(t, err)
	assert.Equal(t, now.Add(-4*time.Hour), repo.since)
}
