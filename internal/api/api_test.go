package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	coreerrors "github.com/lueurxax/kenter-news-bot/internal/core/errors"
	"github.com/lueurxax/kenter-news-bot/internal/core/llm"
)

var created = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	live        map[string][]domain.LiveItem
	rankings    map[string][]domain.Ranking
	keywords    []domain.TrendingKeyword
	archive     []domain.ArchiveEntry
	archiveArgs struct {
		query string
		limit int
	}
	votes map[string][2]int
	err   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		live: map[string][]domain.LiveItem{
			"K-Pop": {
				{ID: "6f1c7a52-0000-4000-8000-000000000001", Category: "K-Pop", Keyword: "뉴진스", Title: "뉴진스 컴백", Score: 8.5, Rank: 1, CreatedAt: created},
				{ID: "6f1c7a52-0000-4000-8000-000000000002", Category: "K-Pop", Keyword: "aespa", Title: "aespa tour", Score: 7, Rank: 2, CreatedAt: created},
			},
			"K-Drama": {
				{ID: "6f1c7a52-0000-4000-8000-000000000003", Category: "K-Drama", Keyword: "드라마", Title: "시청률", Score: 6, Rank: 1, CreatedAt: created},
			},
		},
		rankings: map[string][]domain.Ranking{
			"K-Pop": {{Category: "K-Pop", Rank: 1, Keyword: "뉴진스", Delta: "▲2", Score: 9}},
		},
		keywords: []domain.TrendingKeyword{{Keyword: "뉴진스", Count: 3, Rank: 1, UpdatedAt: created}},
		archive:  []domain.ArchiveEntry{{Category: "K-Pop", Keyword: "뉴진스", Title: "뉴진스 컴백", OriginalLink: "https://a.example.com", Score: 8.5}},
		votes:    map[string][2]int{"6f1c7a52-0000-4000-8000-000000000001": {4, 1}},
	}
}

func (f *fakeRepo) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{Name: "K-Pop", SortOrder: 0, MaxItems: 30}, {Name: "K-Drama", SortOrder: 1, MaxItems: 20}}, f.err
}

func (f *fakeRepo) ListLiveItems(_ context.Context, category string) ([]domain.LiveItem, error) {
	return f.live[category], f.err
}

func (f *fakeRepo) ListAllLiveItems(context.Context) ([]domain.LiveItem, error) {
	return append(append([]domain.LiveItem(nil), f.live["K-Pop"]...), f.live["K-Drama"]...), f.err
}

func (f *fakeRepo) GetRankings(_ context.Context, category string) ([]domain.Ranking, error) {
	return f.rankings[category], f.err
}

func (f *fakeRepo) ListTrendingKeywords(context.Context) ([]domain.TrendingKeyword, error) {
	return f.keywords, f.err
}

func (f *fakeRepo) SearchArchive(_ context.Context, query string, limit int) ([]domain.ArchiveEntry, error) {
	f.archiveArgs.query = query
	f.archiveArgs.limit = limit

	return f.archive, f.err
}

func (f *fakeRepo) Vote(_ context.Context, id, voteType string) (int, int, error) {
	if voteType != domain.VoteLikes && voteType != domain.VoteDislikes {
		return 0, 0, coreerrors.ErrInvalidInput
	}

	counts, ok := f.votes[id]
	if !ok {
		return 0, 0, coreerrors.ErrNotFound
	}

	if voteType == domain.VoteLikes {
		counts[0]++
	} else {
		counts[1]++
	}

	f.votes[id] = counts

	return counts[0], counts[1], nil
}

type fakeTranslator struct {
	lang string
	err  error
}

func (f *fakeTranslator) TranslateText(_ context.Context, text, lang, _ string) (string, error) {
	f.lang = lang
	if f.err != nil {
		return "", f.err
	}

	return "[" + lang + "] " + text, nil
}

func (f *fakeTranslator) GetProviderStatuses() []llm.ProviderStatus {
	return []llm.ProviderStatus{{Name: "mock", Available: true}}
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func newTestHandler(repo *fakeRepo, tr Translator) *Handler {
	logger := zerolog.Nop()
	return New(repo, tr, &logger)
}

func TestNews(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCount int
	}{
		{name: "by category", target: "/api/news?category=K-Pop", wantCount: 2},
		{name: "all categories", target: "/api/news", wantCount: 3},
		{name: "unknown category", target: "/api/news?category=J-Pop", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newTestHandler(newFakeRepo(), nil), http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, contentTypeJSON, rec.Header().Get(headerContentType))

			var got []newsDTO
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Len(t, got, tt.wantCount)
		})
	}
}

func TestNews_Fields(t *testing.T) {
	rec := serve(t, newTestHandler(newFakeRepo(), nil), http.MethodGet, "/api/news?category=K-Pop", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(t, got)

	assert.Equal(t, "뉴진스", got[0]["keyword"])
	assert.InDelta(t, 1, got[0]["rank"], 0)
	assert.NotContains(t, got[0], "image_url")
}

func TestRankings(t *testing.T) {
	h := newTestHandler(newFakeRepo(), nil)

	rec := serve(t, h, http.MethodGet, "/api/rankings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodGet, "/api/rankings?category=K-Pop", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []rankingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "▲2", got[0].Delta)
}

func TestKeywordsAndCategories(t *testing.T) {
	h := newTestHandler(newFakeRepo(), nil)

	rec := serve(t, h, http.MethodGet, "/api/keywords", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var keywords []keywordDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keywords))
	require.Len(t, keywords, 1)
	assert.Equal(t, 3, keywords[0].Count)

	rec = serve(t, h, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []categoryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.Equal(t, []categoryDTO{{Name: "K-Pop", SortOrder: 0, MaxItems: 30}, {Name: "K-Drama", SortOrder: 1, MaxItems: 20}}, categories)
}

func TestArchive(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantQuery string
		wantLimit int
	}{
		{name: "query and limit", target: "/api/archive?q=%EB%89%B4%EC%A7%84%EC%8A%A4&limit=5", wantCode: http.StatusOK, wantQuery: "뉴진스", wantLimit: 5},
		{name: "defaults", target: "/api/archive", wantCode: http.StatusOK},
		{name: "bad limit", target: "/api/archive?limit=abc", wantCode: http.StatusBadRequest},
		{name: "negative limit", target: "/api/archive?limit=-1", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			rec := serve(t, newTestHandler(repo, nil), http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantQuery, repo.archiveArgs.query)
				assert.Equal(t, tt.wantLimit, repo.archiveArgs.limit)
			}
		})
	}
}

func TestVote(t *testing.T) {
	const id = "6f1c7a52-0000-4000-8000-000000000001"

	tests := []struct {
		name     string
		target   string
		body     string
		wantCode int
		want     voteResponse
	}{
		{name: "like", target: "/api/news/" + id + "/vote", body: `{"type":"likes"}`, wantCode: http.StatusOK, want: voteResponse{Likes: 5, Dislikes: 1}},
		{name: "dislike", target: "/api/news/" + id + "/vote", body: `{"type":"dislikes"}`, wantCode: http.StatusOK, want: voteResponse{Likes: 4, Dislikes: 2}},
		{name: "bad type", target: "/api/news/" + id + "/vote", body: `{"type":"love"}`, wantCode: http.StatusBadRequest},
		{name: "bad body", target: "/api/news/" + id + "/vote", body: `{"type":`, wantCode: http.StatusBadRequest},
		{name: "unknown field", target: "/api/news/" + id + "/vote", body: `{"kind":"likes"}`, wantCode: http.StatusBadRequest},
		{name: "missing item", target: "/api/news/6f1c7a52-0000-4000-8000-00000000ffff/vote", body: `{"type":"likes"}`, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newTestHandler(newFakeRepo(), nil), http.MethodPost, tt.target, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode == http.StatusOK {
				var got voteResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestVote_MethodNotAllowed(t *testing.T) {
	rec := serve(t, newTestHandler(newFakeRepo(), nil), http.MethodGet, "/api/news/x/vote", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		translator *fakeTranslator
		body       string
		wantCode   int
		wantText   string
	}{
		{name: "default language", translator: &fakeTranslator{}, body: `{"text":"안녕하세요"}`, wantCode: http.StatusOK, wantText: "[en] 안녕하세요"},
		{name: "explicit language", translator: &fakeTranslator{}, body: `{"text":"안녕","target_lang":"ja"}`, wantCode: http.StatusOK, wantText: "[ja] 안녕"},
		{name: "empty text", translator: &fakeTranslator{}, body: `{"text":"  "}`, wantCode: http.StatusBadRequest},
		{name: "too long", translator: &fakeTranslator{}, body: `{"text":"` + strings.Repeat("가", maxTranslateRunes+1) + `"}`, wantCode: http.StatusRequestEntityTooLarge},
		{name: "provider failure", translator: &fakeTranslator{err: errors.New("all down")}, body: `{"text":"안녕"}`, wantCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newTestHandler(newFakeRepo(), tt.translator), http.MethodPost, "/api/translate", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantCode == http.StatusOK {
				var got translateResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, tt.wantText, got.Text)
			}
		})
	}
}

func TestTranslate_Unavailable(t *testing.T) {
	rec := serve(t, newTestHandler(newFakeRepo(), nil), http.MethodPost, "/api/translate", `{"text":"안녕"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLLMStatus(t *testing.T) {
	rec := serve(t, newTestHandler(newFakeRepo(), &fakeTranslator{}), http.MethodGet, "/api/llm/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mock"`)
}

func TestRepositoryError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection refused")

	rec := serve(t, newTestHandler(repo, nil), http.MethodGet, "/api/keywords", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
