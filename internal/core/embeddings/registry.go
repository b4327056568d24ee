package embeddings

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
)

// Registry errors.
var (
	ErrNoProvidersAvailable = errors.New("no embedding providers available")
	ErrAllProvidersFailed   = errors.New("all embedding providers failed")
	ErrEmptyText            = errors.New("empty text")
)

// Registry manages embedding providers with fallback support.
type Registry struct {
	mu              sync.RWMutex
	providers       []Provider
	circuitBreakers map[ProviderName]*CircuitBreaker
	targetDimension int
	logger          *zerolog.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(targetDimension int, logger *zerolog.Logger) *Registry {
	return &Registry{
		circuitBreakers: make(map[ProviderName]*CircuitBreaker),
		targetDimension: targetDimension,
		logger:          logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider, cfg CircuitBreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)
	r.circuitBreakers[p.Name()] = NewCircuitBreaker(cfg, r.logger)

	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority() > r.providers[j].Priority()
	})

	r.logger.Info().
		Str(logKeyProvider, string(p.Name())).
		Str("model", p.Model()).
		Int("priority", p.Priority()).
		Msg("registered embedding provider")
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// GetEmbedding tries providers in priority order and returns the first vector,
// padded or truncated to the target dimension.
func (r *Registry) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	r.mu.RLock()
	providers := make([]Provider, len(r.providers))
	copy(providers, r.providers)
	r.mu.RUnlock()

	var lastErr error

	for _, p := range providers {
		if !p.IsAvailable() {
			continue
		}

		name := string(p.Name())
		cb := r.circuitBreakers[p.Name()]

		if !cb.CanAttempt() {
			r.logger.Debug().Str(logKeyProvider, name).Msg("skipping provider - circuit breaker open")

			continue
		}

		start := time.Now()
		result, err := p.GetEmbedding(ctx, text)
		observability.EmbeddingRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			cb.RecordFailure(name)
			observability.EmbeddingRequests.WithLabelValues(name, observability.StatusError).Inc()

			lastErr = err

			r.logger.Warn().Err(err).Str(logKeyProvider, name).Msg("embedding provider failed, trying fallback")

			continue
		}

		cb.RecordSuccess()
		observability.EmbeddingRequests.WithLabelValues(name, observability.StatusSuccess).Inc()

		return PadToTargetDimensions(result.Vector, r.targetDimension), nil
	}

	if lastErr != nil {
		return nil, errors.Join(ErrAllProvidersFailed, lastErr)
	}

	return nil, ErrNoProvidersAvailable
}
