// Package embeddings turns headline titles into vectors for near-duplicate
// detection. Providers are tried in priority order behind circuit breakers and
// every vector is padded or truncated to the live table's column width.
package embeddings

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ProviderName identifies an embedding provider.
type ProviderName string

// Provider name constants.
const (
	ProviderOpenAI ProviderName = "openai"
	ProviderGoogle ProviderName = "google"
)

// Priority constants for provider ordering.
const (
	PriorityPrimary  = 100
	PriorityFallback = 50
)

// DefaultDimensions matches the vector(1536) column of live_news.
const DefaultDimensions = 1536

const (
	defaultCircuitThreshold = 5
	errRateLimiterFmt       = "rate limiter: %w"
	logKeyProvider          = "provider"
)

// Client generates fixed-width embeddings.
type Client interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingResult contains the embedding vector and metadata.
type EmbeddingResult struct {
	Vector   []float32
	Provider ProviderName
}

// Provider is a single embedding backend.
type Provider interface {
	Name() ProviderName
	GetEmbedding(ctx context.Context, text string) (EmbeddingResult, error)
	IsAvailable() bool
	// Priority orders providers, higher first.
	Priority() int
	Model() string
}

// CircuitBreakerConfig defines circuit breaker settings.
type CircuitBreakerConfig struct {
	Threshold  int           // Number of failures before opening circuit
	ResetAfter time.Duration // Time before attempting recovery
}

// DefaultCircuitBreakerConfig returns 5 failures / 1 minute.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Threshold:  defaultCircuitThreshold,
		ResetAfter: time.Minute,
	}
}

// Config holds configuration for creating an embedding client.
type Config struct {
	OpenAIAPIKey string
	OpenAIModel  string

	GoogleAPIKey string
	GoogleModel  string

	RateLimitRPS     float64
	CircuitBreaker   CircuitBreakerConfig
	TargetDimensions int
}

// NewClient builds a registry from every configured provider. It returns
// nil when no provider has credentials; callers then skip embedding checks.
func NewClient(ctx context.Context, cfg Config, logger *zerolog.Logger) Client {
	if cfg.TargetDimensions == 0 {
		cfg.TargetDimensions = DefaultDimensions
	}

	if cfg.CircuitBreaker.Threshold == 0 {
		cfg.CircuitBreaker = DefaultCircuitBreakerConfig()
	}

	registry := NewRegistry(cfg.TargetDimensions, logger)

	if cfg.OpenAIAPIKey != "" {
		registry.Register(NewOpenAIProvider(OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			Dimensions: cfg.TargetDimensions,
			RateLimit:  cfg.RateLimitRPS,
		}), cfg.CircuitBreaker)
	}

	if cfg.GoogleAPIKey != "" {
		p, err := NewGoogleProvider(ctx, GoogleConfig{
			APIKey:    cfg.GoogleAPIKey,
			Model:     cfg.GoogleModel,
			RateLimit: cfg.RateLimitRPS,
		})
		if err != nil {
			logger.Error().Err(err).Msg("failed to create Google embedding provider")
		} else {
			registry.Register(p, cfg.CircuitBreaker)
		}
	}

	if registry.ProviderCount() == 0 {
		logger.Info().Msg("no embedding providers configured, title similarity checks disabled")

		return nil
	}

	return registry
}
