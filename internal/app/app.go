// Package app wires the application dependencies and exposes one method per
// operational mode:
//
//   - Scrape mode: one pipeline run for a named or time-rotated category
//   - Scheduler mode: cron-driven scrapes plus periodic keyword and archive refreshes
//   - Archive mode: one archive pass over every category
//   - Keywords mode: one trending keyword refresh
//   - HTTP mode: the read API, health and metrics endpoints only
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/api"
	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/core/embeddings"
	"github.com/lueurxax/kenter-news-bot/internal/core/links"
	"github.com/lueurxax/kenter-news-bot/internal/core/llm"
	"github.com/lueurxax/kenter-news-bot/internal/core/sources"
	"github.com/lueurxax/kenter-news-bot/internal/output/notify"
	"github.com/lueurxax/kenter-news-bot/internal/platform/config"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
	"github.com/lueurxax/kenter-news-bot/internal/platform/schedule"
	"github.com/lueurxax/kenter-news-bot/internal/platform/worker"
	"github.com/lueurxax/kenter-news-bot/internal/process/dedup"
	"github.com/lueurxax/kenter-news-bot/internal/process/keywords"
	"github.com/lueurxax/kenter-news-bot/internal/process/pipeline"
	"github.com/lueurxax/kenter-news-bot/internal/process/retention"
	db "github.com/lueurxax/kenter-news-bot/internal/storage"
)

const (
	logFieldNextRun = "next_run"
	schedulerName   = "scheduler"
	taskScrape      = "scrape"
	taskKeywords    = "keywords_refresh"
	taskArchive     = "archive"
)

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg        *config.Config
	database   *db.DB
	categories []domain.Category
	logger     *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, categories []domain.Category, logger *zerolog.Logger) *App {
	return &App{
		cfg:        cfg,
		database:   database,
		categories: categories,
		logger:     logger,
	}
}

// StartHealthServer serves health, metrics and the read API until ctx ends.
func (a *App) StartHealthServer(ctx context.Context) error {
	llmClient, err := a.newLLMClient(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("LLM client unavailable, translation disabled")
	}

	var translator api.Translator
	if llmClient != nil {
		translator = llmClient
	}

	handler := api.New(a.database, translator, a.logger)
	srv := observability.NewServerWithAPI(a.database, a.cfg.HealthPort, handler, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunHTTP runs the HTTP-only mode.
func (a *App) RunHTTP(ctx context.Context) error {
	a.logger.Info().Msg("Starting HTTP-only mode")

	return a.StartHealthServer(ctx)
}

// RunScrape runs the pipeline once for category, or for the category of the
// current half-hour slot when category is empty.
func (a *App) RunScrape(ctx context.Context, category string) error {
	p, err := a.newPipeline(ctx)
	if err != nil {
		return err
	}

	return worker.RunWithTimeout(ctx, a.cfg.RunTimeout, func(ctx context.Context) error {
		return a.scrape(ctx, p, category)
	})
}

func (a *App) scrape(ctx context.Context, p *pipeline.Pipeline, name string) error {
	if name == "" {
		res, err := p.RunScheduled(ctx)
		if errors.Is(err, pipeline.ErrCategoryPaused) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("scheduled run for %s: %w", res.Category, err)
		}

		return nil
	}

	category, err := p.Category(name)
	if err != nil {
		return err
	}

	if _, err := p.RunCategory(ctx, category); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}

	return nil
}

// RunScheduler fires a rotated scrape on the cron spec and refreshes the
// trending keywords and the archive on their own intervals.
func (a *App) RunScheduler(ctx context.Context) error {
	a.logger.Info().Str("cron", a.cfg.ScrapeCron).Msg("Starting scheduler mode")

	if err := worker.ValidateCronSpec(a.cfg.ScrapeCron); err != nil {
		return err
	}

	p, err := a.newPipeline(ctx)
	if err != nil {
		return err
	}

	refresher := a.newKeywordRefresher()
	manager := a.newRetentionManager()

	if next, err := schedule.NextRun(a.cfg.ScrapeCron, time.Now()); err == nil {
		a.logger.Info().Time(logFieldNextRun, next).Msg("First scrape scheduled")
	}

	errCh := make(chan error, 2)

	go func() {
		errCh <- worker.CronLoop(ctx, worker.CronConfig{
			Name:   schedulerName,
			Logger: a.logger,
			Jobs: []worker.CronJob{{
				Name: taskScrape,
				Spec: a.cfg.ScrapeCron,
				Run: func(ctx context.Context) {
					err := worker.RunWithTimeout(ctx, a.cfg.RunTimeout, func(ctx context.Context) error {
						return a.scrape(ctx, p, "")
					})
					if err != nil {
						a.logger.Error().Err(err).Msg("scheduled scrape failed")
					}
				},
			}},
		})
	}()

	go func() {
		errCh <- worker.TickerLoop(ctx, worker.TickerConfig{
			Name:   schedulerName,
			Logger: a.logger,
			Tasks: []worker.TickerTask{
				{
					Name:       taskKeywords,
					Interval:   a.cfg.KeywordsRefreshInterval,
					RunOnStart: true,
					Run: func(ctx context.Context) {
						if _, err := refresher.Refresh(ctx); err != nil {
							a.logger.Error().Err(err).Msg("keyword refresh failed")
						}
					},
				},
				{
					Name:     taskArchive,
					Interval: a.cfg.ArchiveInterval,
					Run: func(ctx context.Context) {
						if _, err := manager.Archive(ctx); err != nil {
							a.logger.Error().Err(err).Msg("archive refresh failed")
						}
					},
				},
			},
		})
	}()

	// Both loops only return once ctx is canceled.
	err = <-errCh
	<-errCh

	return err
}

// RunArchive archives every qualifying live item once.
func (a *App) RunArchive(ctx context.Context) error {
	res, err := a.newRetentionManager().Archive(ctx)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	if len(res.New) > 0 {
		if err := a.newNotifier().NotifyArchived(ctx, res.New); err != nil {
			a.logger.Warn().Err(err).Msg("failed to notify archived items")
		}
	}

	return nil
}

// RunKeywords rebuilds the trending keyword chart once.
func (a *App) RunKeywords(ctx context.Context) error {
	if _, err := a.newKeywordRefresher().Refresh(ctx); err != nil {
		return fmt.Errorf("refresh keywords: %w", err)
	}

	return nil
}

func (a *App) newPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	llmClient, err := a.newLLMClient(ctx)
	if err != nil {
		return nil, err
	}

	collector, naver, err := a.newSources(ctx)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Repo:      a.database,
		Collector: collector,
		Fetcher:   links.NewWebFetcher(a.cfg.WebFetchRPS, a.cfg.WebFetchTimeout),
		LLM:       llmClient,
		Dedup:     a.newDeduplicator(),
		Slots:     a.newRetentionManager(),
		Notifier:  a.newNotifier(),
	}

	if naver.Enabled() {
		deps.Searcher = naver
	}

	if a.cfg.GoogleTrendsEnabled {
		deps.Hints = sources.NewTrends(sources.TrendsConfig{Geo: a.cfg.GoogleTrendsGeo}, a.logger)
	}

	if emb := a.newEmbeddingClient(ctx); emb != nil {
		deps.Embedder = emb
	}

	cfg := pipeline.Config{
		RankingSize:        a.cfg.RankingSize,
		ArticlesPerKeyword: a.cfg.ArticlesPerKeyword,
		MaxArticleChars:    a.cfg.MaxArticleChars,
		HintsLimit:         a.cfg.TrendingKeywordsLimit,
	}

	return pipeline.New(cfg, deps, a.categories, a.logger), nil
}

func (a *App) newSources(ctx context.Context) (*sources.MultiSource, *sources.Naver, error) {
	naver := sources.NewNaver(sources.NaverConfig{
		ClientID:     a.cfg.NaverClientID,
		ClientSecret: a.cfg.NaverClientSecret,
		Sort:         a.cfg.NaverSort,
	}, a.logger)

	cse, err := sources.NewGoogleCSE(ctx, sources.GoogleCSEConfig{
		APIKey:   a.cfg.GoogleSearchAPIKey,
		EngineID: a.cfg.GoogleSearchEngineID,
	}, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("google custom search: %w", err)
	}

	rss := sources.NewRSS(sources.RSSConfig{Feeds: a.cfg.RSSFeeds}, a.logger)

	multi := sources.NewMultiSource([]sources.Source{naver, cse, rss}, a.cfg.HeadlineMaxAge, a.cfg.HeadlinesPerQuery, a.logger)
	a.logger.Info().Strs("sources", multi.Sources()).Msg("Headline sources ready")

	return multi, naver, nil
}

func (a *App) newLLMClient(ctx context.Context) (llm.Client, error) {
	client, err := llm.New(ctx, a.cfg, a.database, a.logger)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	return client, nil
}

func (a *App) newEmbeddingClient(ctx context.Context) embeddings.Client {
	return embeddings.NewClient(ctx, embeddings.Config{
		OpenAIAPIKey: a.cfg.OpenAIAPIKey,
		OpenAIModel:  a.cfg.EmbeddingsModel,
		GoogleAPIKey: a.cfg.GoogleAPIKey,
		RateLimitRPS: float64(a.cfg.LLMRateLimitRPS),
		CircuitBreaker: embeddings.CircuitBreakerConfig{
			Threshold:  a.cfg.LLMCircuitThresh,
			ResetAfter: a.cfg.LLMCircuitReset,
		},
	}, a.logger)
}

func (a *App) newDeduplicator() *dedup.Deduplicator {
	cfg := dedup.Config{
		Batch: dedup.Options{
			MinScore:         a.cfg.MinSaveScore,
			UniqueKeywords:   a.cfg.UniqueKeywords,
			PlaceholderHosts: append([]string{dedup.DefaultPlaceholderHost}, a.cfg.PlaceholderImageHosts...),
		},
		KeywordCooldown:     a.cfg.KeywordCooldown,
		SimilarityThreshold: a.cfg.TitleSimilarityThreshold,
	}

	return dedup.New(a.database, cfg, a.logger)
}

func (a *App) newRetentionManager() *retention.Manager {
	policy := retention.Policy{
		MaxItems:        a.cfg.MaxItemsPerCategory,
		TTL:             a.cfg.LiveTTL,
		ArchiveMinScore: a.cfg.ArchiveMinScore,
		ArchiveTopRank:  a.cfg.ArchiveTopRank,
	}

	limits := make(map[string]int, len(a.categories))
	for _, c := range a.categories {
		limits[c.Name] = c.MaxItems
	}

	return retention.NewManager(a.database, policy, a.logger, retention.WithCategoryLimits(limits))
}

func (a *App) newKeywordRefresher() *keywords.Refresher {
	return keywords.NewRefresher(a.database, a.cfg.TrendingKeywordsLimit, a.logger)
}

func (a *App) newNotifier() pipeline.Notifier {
	if a.cfg.TelegramBotToken == "" {
		return notify.Nop{}
	}

	n, err := notify.NewTelegram(a.cfg.TelegramBotToken, a.cfg.TelegramChatID, a.logger)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Telegram notifier unavailable, archive notifications disabled")

		return notify.Nop{}
	}

	return n
}
