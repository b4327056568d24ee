package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	coreerrors "github.com/lueurxax/kenter-news-bot/internal/core/errors"
)

// OpenAI-compatible endpoints.
const (
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	PerplexityBaseURL = "https://api.perplexity.ai"
)

const (
	compatRateLimiterBurst = 5
	compatDefaultTimeout   = 60 * time.Second
	compatMaxTokens        = 2048
	compatTemperature      = 0.3
)

// ErrEmptyCompletion is returned when the API answers without choices.
var ErrEmptyCompletion = fmt.Errorf("chat completion: %w", coreerrors.ErrEmptyResponse)

// CompatConfig configures a provider that speaks the OpenAI chat API.
type CompatConfig struct {
	Name         ProviderName
	APIKey       string
	BaseURL      string
	DefaultModel string
	Priority     int
	RateLimitRPS float64
	Timeout      time.Duration
}

// compatProvider serves OpenAI, Groq, OpenRouter and Perplexity through go-openai.
type compatProvider struct {
	promptTasks

	cfg         CompatConfig
	client      *openai.Client
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// NewCompatProvider creates an OpenAI-compatible provider.
func NewCompatProvider(cfg CompatConfig, logger *zerolog.Logger) Provider {
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = compatDefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	p := &compatProvider{
		cfg:         cfg,
		client:      openai.NewClientWithConfig(clientCfg),
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), compatRateLimiterBurst),
		logger:      logger,
	}
	p.promptTasks = promptTasks{complete: p.complete}

	return p
}

func (p *compatProvider) Name() ProviderName { return p.cfg.Name }
func (p *compatProvider) IsAvailable() bool  { return p.cfg.APIKey != "" }
func (p *compatProvider) Priority() int      { return p.cfg.Priority }

func (p *compatProvider) complete(ctx context.Context, prompt, model string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiterFmt, err)
	}

	if model == "" {
		model = p.cfg.DefaultModel
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   compatMaxTokens,
		Temperature: compatTemperature,
	})
	if err != nil {
		return "", fmt.Errorf(errChatCompletionFmt, p.cfg.Name, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}

	p.logger.Debug().
		Str(logKeyProvider, string(p.cfg.Name)).
		Str(logKeyModel, model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("chat completion done")

	return content, nil
}
