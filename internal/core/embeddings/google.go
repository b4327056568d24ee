package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// ModelGeminiEmbedding001 is the default Google embedding model.
const ModelGeminiEmbedding001 = "gemini-embedding-001"

const googleRateLimiterBurst = 5

// Google embedding errors.
var (
	ErrGoogleEmptyResponse = errors.New("empty embedding response from Google")
	ErrGoogleAPIFailure    = errors.New("google embedding API error")
)

// GoogleProvider implements the embedding Provider interface for Google Gemini.
type GoogleProvider struct {
	client      *genai.Client
	model       string
	rateLimiter *rate.Limiter
}

// GoogleConfig holds configuration for the Google embedding provider.
type GoogleConfig struct {
	APIKey    string
	Model     string
	RateLimit float64
}

// NewGoogleProvider creates a new Google embedding provider.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	if cfg.Model == "" {
		cfg.Model = ModelGeminiEmbedding001
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating google genai client: %w", err)
	}

	return &GoogleProvider{
		client:      client,
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), googleRateLimiterBurst),
	}, nil
}

func (p *GoogleProvider) Name() ProviderName { return ProviderGoogle }
func (p *GoogleProvider) Priority() int      { return PriorityFallback }
func (p *GoogleProvider) IsAvailable() bool  { return p.client != nil }
func (p *GoogleProvider) Model() string      { return p.model }

// GetEmbedding generates an embedding for the given text using Google Gemini API.
func (p *GoogleProvider) GetEmbedding(ctx context.Context, text string) (EmbeddingResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return EmbeddingResult{}, fmt.Errorf(errRateLimiterFmt, err)
	}

	resp, err := p.client.EmbeddingModel(p.model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("%w: %w", ErrGoogleAPIFailure, err)
	}

	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return EmbeddingResult{}, ErrGoogleEmptyResponse
	}

	return EmbeddingResult{
		Vector:   resp.Embedding.Values,
		Provider: ProviderGoogle,
	}, nil
}

// Close closes the Google client.
func (p *GoogleProvider) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("closing google embedding client: %w", err)
		}
	}

	return nil
}
