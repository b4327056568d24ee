package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ModelTextEmbedding3Small produces 1536-dimensional vectors.
const ModelTextEmbedding3Small = "text-embedding-3-small"

const openaiRateLimiterBurst = 5

// ErrOpenAIEmptyResponse is returned when the API answers without vectors.
var ErrOpenAIEmptyResponse = errors.New("empty embedding response from OpenAI")

// OpenAIProvider implements the embedding Provider interface for OpenAI.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	dimensions  int
	rateLimiter *rate.Limiter
	available   bool
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Dimensions int
	RateLimit  float64
	// BaseURL overrides the API endpoint.
	BaseURL string
}

// NewOpenAIProvider creates a new OpenAI embedding provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = ModelTextEmbedding3Small
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), openaiRateLimiterBurst),
		available:   cfg.APIKey != "",
	}
}

func (p *OpenAIProvider) Name() ProviderName { return ProviderOpenAI }
func (p *OpenAIProvider) Priority() int      { return PriorityPrimary }
func (p *OpenAIProvider) IsAvailable() bool  { return p.available }
func (p *OpenAIProvider) Model() string      { return p.model }

// GetEmbedding generates an embedding for the given text using OpenAI API.
func (p *OpenAIProvider) GetEmbedding(ctx context.Context, text string) (EmbeddingResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return EmbeddingResult{}, fmt.Errorf(errRateLimiterFmt, err)
	}

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	}

	if p.dimensions > 0 && p.model != ModelTextEmbedding3Small {
		req.Dimensions = p.dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return EmbeddingResult{}, ErrOpenAIEmptyResponse
	}

	return EmbeddingResult{
		Vector:   resp.Data[0].Embedding,
		Provider: ProviderOpenAI,
	}, nil
}
