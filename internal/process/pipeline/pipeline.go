// Package pipeline runs one scrape cycle for a category: collect headlines,
// rank trending keywords, summarize articles per keyword, deduplicate, insert,
// then bound the live table and refresh the archive.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/core/embeddings"
	coreerrors "github.com/lueurxax/kenter-news-bot/internal/core/errors"
	"github.com/lueurxax/kenter-news-bot/internal/core/llm"
	"github.com/lueurxax/kenter-news-bot/internal/core/sources"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
	"github.com/lueurxax/kenter-news-bot/internal/platform/schedule"
	"github.com/lueurxax/kenter-news-bot/internal/platform/settings"
	"github.com/lueurxax/kenter-news-bot/internal/process/dedup"
	"github.com/lueurxax/kenter-news-bot/internal/process/rankings"
	"github.com/lueurxax/kenter-news-bot/internal/process/retention"
	db "github.com/lueurxax/kenter-news-bot/internal/storage"
)

// ErrCategoryPaused is returned by RunScheduled when the selected category is paused.
var ErrCategoryPaused = errors.New("category paused")

// Repository is the storage surface a run writes through.
type Repository interface {
	SaveRawHeadlines(ctx context.Context, category string, headlines []domain.Headline) error
	GetRankings(ctx context.Context, category string) ([]domain.Ranking, error)
	ReplaceRankings(ctx context.Context, category string, rankings []domain.Ranking) error
	UpsertLiveItems(ctx context.Context, items []domain.LiveItem) (int, error)
	TryLockCategory(ctx context.Context, category string) (func(), error)
	GetSetting(ctx context.Context, key string, target interface{}) error
}

// Compile-time assertion that *db.DB implements Repository.
var _ Repository = (*db.DB)(nil)

// Collector gathers a category's headlines from every enabled source.
type Collector interface {
	Collect(ctx context.Context, category domain.Category) ([]domain.Headline, error)
}

// HintSource supplies externally trending searches passed to the ranking prompt.
type HintSource interface {
	Keywords(ctx context.Context, limit int) ([]string, error)
}

// PageFetcher downloads an article page as UTF-8.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Deduper filters candidates against the batch and the live table.
type Deduper interface {
	Filter(ctx context.Context, category string, items []domain.LiveItem) ([]domain.LiveItem, []dedup.Dropped, error)
	IsKeywordRecent(ctx context.Context, category, keyword string) (bool, error)
}

// SlotManager bounds the live table and maintains the archive.
type SlotManager interface {
	ManageSlots(ctx context.Context, category string) (retention.Result, error)
	Archive(ctx context.Context) (retention.ArchiveResult, error)
}

// Notifier announces newly archived items.
type Notifier interface {
	NotifyArchived(ctx context.Context, entries []domain.ArchiveEntry) error
}

// Config tunes a run.
type Config struct {
	RankingSize        int
	ArticlesPerKeyword int
	MaxArticleChars    int
	HintsLimit         int
}

func (c Config) withDefaults() Config {
	if c.RankingSize <= 0 {
		c.RankingSize = DefaultRankingSize
	}

	if c.ArticlesPerKeyword <= 0 {
		c.ArticlesPerKeyword = DefaultArticlesPerKeyword
	}

	if c.MaxArticleChars <= 0 {
		c.MaxArticleChars = DefaultMaxArticleChars
	}

	if c.HintsLimit <= 0 {
		c.HintsLimit = DefaultHintsLimit
	}

	return c
}

// Deps groups the collaborators of a Pipeline. Searcher, Fetcher, Hints,
// Embedder and Notifier are optional.
type Deps struct {
	Repo      Repository
	Collector Collector
	Searcher  sources.Source
	Fetcher   PageFetcher
	Hints     HintSource
	LLM       llm.Client
	Embedder  embeddings.Client
	Dedup     Deduper
	Slots     SlotManager
	Notifier  Notifier
}

// Result summarizes one category run.
type Result struct {
	Category   string
	Skipped    bool
	Headlines  int
	Keywords   int
	Candidates int
	Saved      int
	Dropped    int
	Slots      retention.Result
	Archived   int
}

type Pipeline struct {
	cfg        Config
	deps       Deps
	categories []domain.Category
	now        func() time.Time
	logger     *zerolog.Logger
}

func New(cfg Config, deps Deps, categories []domain.Category, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg.withDefaults(),
		deps:       deps,
		categories: categories,
		now:        time.Now,
		logger:     logger,
	}
}

// Category looks up a catalog entry by name.
func (p *Pipeline) Category(name string) (domain.Category, error) {
	for _, c := range p.categories {
		if c.Name == name {
			return c, nil
		}
	}

	return domain.Category{}, fmt.Errorf("%w: %s", coreerrors.ErrUnknownCategory, name)
}

// RunScheduled runs the category owning the current half-hour slot.
func (p *Pipeline) RunScheduled(ctx context.Context) (Result, error) {
	order := make([]string, len(p.categories))
	for i, c := range p.categories {
		order[i] = c.Name
	}

	name, err := schedule.SelectCategory(p.now(), order)
	if err != nil {
		return Result{}, fmt.Errorf("select category: %w", err)
	}

	if p.isPaused(ctx, name) {
		observability.PipelineRuns.WithLabelValues(name, observability.StatusSkipped).Inc()
		p.logger.Info().Str(LogFieldCategory, name).Msg("Category paused, skipping slot")

		return Result{Category: name, Skipped: true}, ErrCategoryPaused
	}

	category, err := p.Category(name)
	if err != nil {
		return Result{}, err
	}

	return p.RunCategory(ctx, category)
}

func (p *Pipeline) isPaused(ctx context.Context, name string) bool {
	var paused []string
	if err := p.deps.Repo.GetSetting(ctx, settings.SettingCategoryPaused, &paused); err != nil {
		if !errors.Is(err, coreerrors.ErrNotFound) {
			p.logger.Warn().Err(err).Msg("failed to read paused categories")
		}

		return false
	}

	for _, c := range paused {
		if c == name {
			return true
		}
	}

	return false
}

// RunCategory executes one full scrape cycle for category. Only one run per
// category proceeds at a time; a concurrent call returns a skipped Result.
func (p *Pipeline) RunCategory(ctx context.Context, category domain.Category) (Result, error) {
	start := p.now()
	runID := uuid.NewString()[:runIDShortLen]
	logger := p.logger.With().Str(LogFieldCategory, category.Name).Str(LogFieldRunID, runID).Logger()

	release, err := p.deps.Repo.TryLockCategory(ctx, category.Name)
	if err != nil {
		if errors.Is(err, coreerrors.ErrLockNotAcquired) {
			observability.PipelineRuns.WithLabelValues(category.Name, observability.StatusSkipped).Inc()
			logger.Info().Msg("Another run holds the category, skipping")

			return Result{Category: category.Name, Skipped: true}, nil
		}

		return Result{}, fmt.Errorf("lock category: %w", err)
	}
	defer release()

	logger.Info().Msg("Starting category run")

	res, err := p.run(ctx, category, &logger)

	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusError
	}

	observability.PipelineRuns.WithLabelValues(category.Name, status).Inc()
	observability.PipelineRunDuration.WithLabelValues(category.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		return res, err
	}

	logger.Info().
		Int("headlines", res.Headlines).
		Int("keywords", res.Keywords).
		Int("candidates", res.Candidates).
		Int("saved", res.Saved).
		Int("dropped", res.Dropped).
		Int("remaining", res.Slots.Remaining).
		Int("archived", res.Archived).
		Dur("took", time.Since(start)).
		Msg("Category run finished")

	return res, nil
}

func (p *Pipeline) run(ctx context.Context, category domain.Category, logger *zerolog.Logger) (Result, error) {
	res := Result{Category: category.Name}

	headlines, err := p.deps.Collector.Collect(ctx, category)
	if err != nil {
		return res, fmt.Errorf("collect headlines: %w", err)
	}

	res.Headlines = len(headlines)

	if err := p.deps.Repo.SaveRawHeadlines(ctx, category.Name, headlines); err != nil {
		logger.Warn().Err(err).Msg("failed to save raw headlines")
	}

	ranked, err := p.rankKeywords(ctx, category, headlines, logger)
	if err != nil {
		return res, err
	}

	res.Keywords = len(ranked)

	candidates := p.buildCandidates(ctx, category, ranked, headlines, logger)
	res.Candidates = len(candidates)

	if err := p.updateRankingImages(ctx, category.Name, ranked, candidates); err != nil {
		logger.Warn().Err(err).Msg("failed to store ranking images")
	}

	kept, dropped, err := p.deps.Dedup.Filter(ctx, category.Name, candidates)
	if err != nil {
		return res, fmt.Errorf("deduplicate: %w", err)
	}

	res.Dropped = len(dropped)

	if len(kept) > 0 {
		saved, err := p.deps.Repo.UpsertLiveItems(ctx, kept)
		if err != nil {
			return res, fmt.Errorf("insert live items: %w", err)
		}

		res.Saved = saved
		observability.ItemsSaved.WithLabelValues(category.Name).Add(float64(saved))
	}

	slots, err := p.deps.Slots.ManageSlots(ctx, category.Name)
	if err != nil {
		return res, err
	}

	res.Slots = slots

	archived, err := p.deps.Slots.Archive(ctx)
	if err != nil {
		return res, err
	}

	res.Archived = len(archived.New)

	p.notify(ctx, archived.New, logger)

	return res, nil
}

// rankKeywords asks the LLM for the category's chart, stores it with deltas
// against the previous chart and returns it in rank order.
func (p *Pipeline) rankKeywords(ctx context.Context, category domain.Category, headlines []domain.Headline, logger *zerolog.Logger) ([]domain.Ranking, error) {
	titles := make([]string, 0, len(headlines))
	for _, h := range headlines {
		titles = append(titles, h.Title)
	}

	ranked, err := p.deps.LLM.RankKeywords(ctx, category.Name, titles, p.hints(ctx, logger), p.cfg.RankingSize, "")
	if err != nil {
		return nil, fmt.Errorf("rank keywords: %w", err)
	}

	current := make([]domain.Ranking, 0, len(ranked))
	for _, r := range ranked {
		current = append(current, domain.Ranking{
			Keyword:   r.Keyword,
			MetaInfo:  r.Meta,
			Score:     r.Score,
			UpdatedAt: p.now(),
		})
	}

	current = rankings.Normalize(category.Name, current, p.cfg.RankingSize)

	previous, err := p.deps.Repo.GetRankings(ctx, category.Name)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load previous rankings, marking all as new")
	}

	current = rankings.ComputeDeltas(previous, current)

	if err := p.deps.Repo.ReplaceRankings(ctx, category.Name, current); err != nil {
		return nil, fmt.Errorf("replace rankings: %w", err)
	}

	logger.Info().Int(LogFieldCount, len(current)).Msg("Rankings updated")

	return current, nil
}

func (p *Pipeline) hints(ctx context.Context, logger *zerolog.Logger) []string {
	if p.deps.Hints == nil {
		return nil
	}

	hints, err := p.deps.Hints.Keywords(ctx, p.cfg.HintsLimit)
	if err != nil {
		logger.Debug().Err(err).Msg("trend hints unavailable")

		return nil
	}

	return hints
}

// updateRankingImages copies the picture of each keyword's candidate onto
// its ranking row.
func (p *Pipeline) updateRankingImages(ctx context.Context, category string, ranked []domain.Ranking, candidates []domain.LiveItem) error {
	images := make(map[string]string, len(candidates))
	for _, c := range candidates {
		if c.ImageURL != "" {
			images[dedup.NormalizeKeyword(c.Keyword)] = c.ImageURL
		}
	}

	if len(images) == 0 {
		return nil
	}

	for i := range ranked {
		if img, ok := images[dedup.NormalizeKeyword(ranked[i].Keyword)]; ok {
			ranked[i].ImageURL = img
		}
	}

	return p.deps.Repo.ReplaceRankings(ctx, category, ranked)
}

func (p *Pipeline) notify(ctx context.Context, entries []domain.ArchiveEntry, logger *zerolog.Logger) {
	if p.deps.Notifier == nil || len(entries) == 0 {
		return
	}

	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := p.deps.Notifier.NotifyArchived(nctx, entries); err != nil {
		logger.Warn().Err(err).Int(LogFieldCount, len(entries)).Msg("failed to notify archived items")
	}
}

// FallbackScore is the score given to the keyword at zero-based position
// when the model returned none.
func FallbackScore(position int) float32 {
	return clampScore(float32(fallbackScoreBase - fallbackScoreStep*float64(position)))
}

func clampScore(s float32) float32 {
	switch {
	case s < scoreMin:
		return scoreMin
	case s > scoreMax:
		return scoreMax
	default:
		return s
	}
}
