package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	coreerrors "github.com/lueurxax/kenter-news-bot/internal/core/errors"
	"github.com/lueurxax/kenter-news-bot/internal/core/links"
	"github.com/lueurxax/kenter-news-bot/internal/core/sources"
)

// article is the text and picture gathered for one search result.
type article struct {
	link     string
	text     string
	imageURL string
}

// buildCandidates turns every ranked keyword into at most one live item.
// Failures are per keyword: the keyword is logged and skipped.
func (p *Pipeline) buildCandidates(ctx context.Context, category domain.Category, ranked []domain.Ranking, headlines []domain.Headline, logger *zerolog.Logger) []domain.LiveItem {
	candidates := make([]domain.LiveItem, 0, len(ranked))

	for pos, r := range ranked {
		if ctx.Err() != nil {
			break
		}

		kwLogger := logger.With().Str(LogFieldKeyword, r.Keyword).Logger()

		recent, err := p.deps.Dedup.IsKeywordRecent(ctx, category.Name, r.Keyword)
		if err != nil {
			kwLogger.Warn().Err(err).Msg("keyword cooldown check failed")

			continue
		}

		if recent {
			kwLogger.Debug().Msg("keyword in cooldown, skipping")

			continue
		}

		item, err := p.buildItem(ctx, category.Name, r.Keyword, pos, headlines, &kwLogger)
		if err != nil {
			kwLogger.Warn().Err(err).Msg("failed to build item for keyword")

			continue
		}

		candidates = append(candidates, item)
	}

	return candidates
}

func (p *Pipeline) buildItem(ctx context.Context, category, keyword string, position int, headlines []domain.Headline, logger *zerolog.Logger) (domain.LiveItem, error) {
	results := p.searchArticles(ctx, keyword, headlines, logger)
	if len(results) == 0 {
		return domain.LiveItem{}, fmt.Errorf("articles for %q: %w", keyword, coreerrors.ErrNoResults)
	}

	articles := p.loadArticles(ctx, results, logger)

	texts := make([]string, 0, len(articles))
	for _, a := range articles {
		texts = append(texts, a.text)
	}

	summary, err := p.deps.LLM.Summarize(ctx, keyword, texts, "")
	if err != nil {
		return domain.LiveItem{}, fmt.Errorf("summarize: %w", err)
	}

	score := FallbackScore(position)
	if summary.Score != nil {
		score = clampScore(*summary.Score)
	}

	item := domain.LiveItem{
		ID:        uuid.NewString(),
		Category:  category,
		Keyword:   keyword,
		Title:     strings.TrimSpace(summary.Title),
		Summary:   strings.TrimSpace(summary.Summary),
		Link:      articles[0].link,
		Score:     score,
		CreatedAt: p.now(),
	}

	for _, a := range articles {
		if a.imageURL != "" {
			item.ImageURL = a.imageURL

			break
		}
	}

	item.Embedding = p.embed(ctx, item.Title, logger)

	return item, nil
}

// searchArticles returns up to ArticlesPerKeyword results for keyword. The
// article searcher is asked first; collected headlines mentioning the keyword
// fill the remaining slots.
func (p *Pipeline) searchArticles(ctx context.Context, keyword string, headlines []domain.Headline, logger *zerolog.Logger) []domain.Headline {
	want := p.cfg.ArticlesPerKeyword
	out := make([]domain.Headline, 0, want)
	seen := make(map[string]struct{}, want)

	add := func(h domain.Headline) {
		link := articleLink(h)
		if link == "" || len(out) >= want {
			return
		}

		if _, dup := seen[link]; dup {
			return
		}

		seen[link] = struct{}{}
		out = append(out, h)
	}

	if s := p.deps.Searcher; s != nil && s.Enabled() {
		found, err := s.Search(ctx, sources.Request{Query: keyword, Limit: want + searchOverfetch})
		if err != nil {
			logger.Warn().Err(err).Str("source", s.Name()).Msg("article search failed")
		}

		for _, h := range found {
			add(h)
		}
	}

	if len(out) < want {
		fold := cases.Fold()
		needle := fold.String(strings.TrimSpace(keyword))

		for _, h := range headlines {
			if needle != "" && strings.Contains(fold.String(h.Title+" "+h.Description), needle) {
				add(h)
			}
		}
	}

	return out
}

// loadArticles fetches each result page. A page that cannot be fetched or
// yields no text falls back to the search description.
func (p *Pipeline) loadArticles(ctx context.Context, results []domain.Headline, logger *zerolog.Logger) []article {
	out := make([]article, 0, len(results))

	for _, h := range results {
		a := article{
			link: articleLink(h),
			text: strings.TrimSpace(h.Title + "\n" + h.Description),
		}

		if strings.HasPrefix(h.ImageURL, "https://") {
			a.imageURL = h.ImageURL
		}

		if p.deps.Fetcher != nil {
			body, err := p.deps.Fetcher.Fetch(ctx, a.link)
			if err != nil {
				logger.Debug().Err(err).Str(LogFieldLink, a.link).Msg("article fetch failed, using description")
			} else {
				extracted := links.ExtractArticle(body, a.link, p.cfg.MaxArticleChars)
				if extracted.Text != "" {
					a.text = extracted.Text
				}

				if extracted.ImageURL != "" {
					a.imageURL = extracted.ImageURL
				}
			}
		}

		out = append(out, a)
	}

	return out
}

func (p *Pipeline) embed(ctx context.Context, title string, logger *zerolog.Logger) []float32 {
	if p.deps.Embedder == nil || title == "" {
		return nil
	}

	vec, err := p.deps.Embedder.GetEmbedding(ctx, title)
	if err != nil {
		logger.Debug().Err(err).Msg("title embedding unavailable")

		return nil
	}

	return vec
}

// articleLink prefers the publisher link over the aggregator link.
func articleLink(h domain.Headline) string {
	if h.OriginalLink != "" {
		return h.OriginalLink
	}

	return h.Link
}
