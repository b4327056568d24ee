package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/embeddings"
	"github.com/lueurxax/kenter-news-bot/internal/platform/config"
)

// Response errors.
var (
	ErrEmptyRanking      = errors.New("ranking response has no keywords")
	ErrIncompleteSummary = errors.New("summary response misses title or summary")
	ErrNoHeadlines       = errors.New("no headlines to rank")
	ErrNoArticles        = errors.New("no article text to summarize")
)

// RankedKeyword is one entry of an LLM produced trending chart.
type RankedKeyword struct {
	Rank    int     `json:"rank"`
	Keyword string  `json:"keyword"`
	Meta    string  `json:"meta"`
	Score   float32 `json:"score"`
}

// Summary is the LLM brief for one keyword. Score is nil when the model omitted it.
type Summary struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Score   *float32 `json:"score,omitempty"`
}

// Client is the task level API used by the pipeline and the HTTP API.
type Client interface {
	RankKeywords(ctx context.Context, category string, titles, hints []string, limit int, model string) ([]RankedKeyword, error)
	Summarize(ctx context.Context, keyword string, texts []string, model string) (Summary, error)
	TranslateText(ctx context.Context, text, targetLanguage, model string) (string, error)
	GetProviderStatuses() []ProviderStatus
}

// New builds a registry with every configured provider. With no provider
// configured it falls back to the mock provider so local runs still work.
func New(ctx context.Context, cfg *config.Config, settings SettingsReader, logger *zerolog.Logger) (Client, error) {
	registry := NewRegistry(BuildTaskConfig(cfg), logger)

	cbConfig := embeddings.CircuitBreakerConfig{
		Threshold:  cfg.LLMCircuitThresh,
		ResetAfter: cfg.LLMCircuitReset,
	}

	compat := []CompatConfig{
		{Name: ProviderGroq, APIKey: cfg.GroqAPIKey, BaseURL: GroqBaseURL, DefaultModel: cfg.GroqModel, Priority: PriorityPrimary},
		{Name: ProviderOpenAI, APIKey: cfg.OpenAIAPIKey, DefaultModel: cfg.OpenAIModel, Priority: PrioritySecondFallback},
		{Name: ProviderOpenRouter, APIKey: cfg.OpenRouterAPIKey, BaseURL: OpenRouterBaseURL, DefaultModel: cfg.OpenRouterModel, Priority: PriorityThirdFallback},
		{Name: ProviderPerplexity, APIKey: cfg.PerplexityAPIKey, BaseURL: PerplexityBaseURL, DefaultModel: cfg.PerplexityModel, Priority: PriorityFourthFallback},
	}

	for _, c := range compat {
		if c.APIKey == "" {
			continue
		}

		c.RateLimitRPS = float64(cfg.LLMRateLimitRPS)
		c.Timeout = cfg.LLMTimeout
		registry.Register(NewCompatProvider(c, logger), cbConfig)
	}

	if cfg.GoogleAPIKey != "" {
		p, err := NewGoogleProvider(ctx, GoogleConfig{
			APIKey:       cfg.GoogleAPIKey,
			DefaultModel: cfg.GoogleModel,
			RateLimitRPS: float64(cfg.LLMRateLimitRPS),
		}, logger)
		if err != nil {
			return nil, err
		}

		registry.Register(p, cbConfig)
	}

	if registry.ProviderCount() == 0 {
		logger.Warn().Msg("no LLM provider configured, using mock provider")
		registry.Register(NewMockProvider(), cbConfig)
	}

	if settings != nil {
		registry.LoadOverridesFromDB(ctx, settings)
	}

	return registry, nil
}
