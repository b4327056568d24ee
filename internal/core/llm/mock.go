package llm

import (
	"context"
	"strings"

	"github.com/lueurxax/kenter-news-bot/internal/platform/htmlutils"
)

const (
	mockKeywordRunes = 40
	mockSummaryRunes = 300
	mockScoreStep    = 0.5
)

// mockProvider is a deterministic provider used when no API key is configured.
type mockProvider struct{}

// NewMockProvider creates a new mock LLM provider.
func NewMockProvider() Provider {
	return mockProvider{}
}

func (mockProvider) Name() ProviderName { return ProviderMock }
func (mockProvider) IsAvailable() bool  { return true }
func (mockProvider) Priority() int      { return PriorityMock }

// RankKeywords returns the distinct headlines in input order.
func (mockProvider) RankKeywords(_ context.Context, _ string, titles, _ []string, limit int, _ string) ([]RankedKeyword, error) {
	if len(titles) == 0 {
		return nil, ErrNoHeadlines
	}

	if limit <= 0 {
		limit = defaultRankLimit
	}

	seen := make(map[string]bool, len(titles))
	out := make([]RankedKeyword, 0, limit)

	for _, title := range titles {
		keyword := htmlutils.TruncateRunes(strings.TrimSpace(title), mockKeywordRunes)
		if keyword == "" || seen[keyword] {
			continue
		}

		seen[keyword] = true
		out = append(out, RankedKeyword{
			Rank:    len(out) + 1,
			Keyword: keyword,
			Meta:    llmAPIKeyMock,
			Score:   clampScore(scoreMax - mockScoreStep*float32(len(out))),
		})

		if len(out) == limit {
			break
		}
	}

	return out, nil
}

// Summarize uses the keyword as title and the first text as summary.
func (mockProvider) Summarize(_ context.Context, keyword string, texts []string, _ string) (Summary, error) {
	if len(texts) == 0 {
		return Summary{}, ErrNoArticles
	}

	return Summary{
		Title:   keyword,
		Summary: htmlutils.TruncateRunes(texts[0], mockSummaryRunes),
	}, nil
}

// TranslateText returns the input unchanged.
func (mockProvider) TranslateText(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
