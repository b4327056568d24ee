package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lueurxax/kenter-news-bot/internal/platform/htmlutils"
)

// Default prompts. Providers only differ in how they complete text.
const (
	rankKeywordsPrompt = `You analyse Korean entertainment news for the %s category.
From the headlines below, pick the %d most trending keywords (a person, group, title or event).
Respond with JSON only: {"rankings":[{"rank":1,"keyword":"...","meta":"one short line of context","score":0-10}]}`

	rankHintsHeader = "Currently trending searches:"

	summarizePrompt = `Write a short English news brief about "%s" from the articles below.
Respond with JSON only: {"title":"...","summary":"2-3 sentences","score":0-10}
The score rates how newsworthy the story is.`
)

type completeFunc func(ctx context.Context, prompt, model string) (string, error)

// promptTasks implements the task methods of Provider on top of a plain completion call.
type promptTasks struct {
	complete completeFunc
}

func (t promptTasks) RankKeywords(ctx context.Context, category string, titles, hints []string, limit int, model string) ([]RankedKeyword, error) {
	if len(titles) == 0 {
		return nil, ErrNoHeadlines
	}

	if limit <= 0 {
		limit = defaultRankLimit
	}

	out, err := t.complete(ctx, buildRankPrompt(category, titles, hints, limit), model)
	if err != nil {
		return nil, err
	}

	return parseRankings(out, limit)
}

func (t promptTasks) Summarize(ctx context.Context, keyword string, texts []string, model string) (Summary, error) {
	if len(texts) == 0 {
		return Summary{}, ErrNoArticles
	}

	out, err := t.complete(ctx, buildSummaryPrompt(keyword, texts), model)
	if err != nil {
		return Summary{}, err
	}

	return parseSummary(out)
}

func (t promptTasks) TranslateText(ctx context.Context, text, targetLanguage, model string) (string, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(targetLanguage) == "" {
		return text, nil
	}

	out, err := t.complete(ctx, fmt.Sprintf(translatePromptFmt, targetLanguage, targetLanguage, text), model)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

func buildRankPrompt(category string, titles, hints []string, limit int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(rankKeywordsPrompt, category, limit))
	sb.WriteString("\n\n")

	for i, title := range titles {
		sb.WriteString(fmt.Sprintf(indexedItemFormat, i+1, title))
	}

	if len(hints) > 0 {
		sb.WriteString("\n")
		sb.WriteString(rankHintsHeader)
		sb.WriteString(" ")
		sb.WriteString(strings.Join(hints, ", "))
		sb.WriteString("\n")
	}

	return sb.String()
}

func buildSummaryPrompt(keyword string, texts []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(summarizePrompt, keyword))
	sb.WriteString("\n\n")

	budget := maxSummaryInputLen / len(texts)

	for i, text := range texts {
		sb.WriteString(fmt.Sprintf(indexedItemFormat, i+1, htmlutils.TruncateRunes(text, budget)))
	}

	return sb.String()
}
