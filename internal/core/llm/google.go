package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const (
	// ModelGeminiFlashLite is the cheapest Gemini model.
	ModelGeminiFlashLite = "gemini-2.0-flash-lite"

	googleRateLimiterBurst = 5
	modelPrefixGemini      = "gemini"
)

// GoogleConfig configures the Gemini provider.
type GoogleConfig struct {
	APIKey       string
	DefaultModel string
	RateLimitRPS float64
	// Endpoint overrides the API endpoint.
	Endpoint string
}

// googleProvider implements Provider for Google Gemini.
type googleProvider struct {
	promptTasks

	cfg         GoogleConfig
	client      *genai.Client
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// NewGoogleProvider creates a new Google Gemini LLM provider.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig, logger *zerolog.Logger) (*googleProvider, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating google genai client: %w", err)
	}

	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}

	if cfg.DefaultModel == "" {
		cfg.DefaultModel = ModelGeminiFlashLite
	}

	p := &googleProvider{
		cfg:         cfg,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), googleRateLimiterBurst),
		logger:      logger,
	}
	p.promptTasks = promptTasks{complete: p.complete}

	return p, nil
}

// Close closes the Google client.
func (p *googleProvider) Close() error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("closing google genai client: %w", err)
	}

	return nil
}

func (p *googleProvider) Name() ProviderName { return ProviderGoogle }
func (p *googleProvider) IsAvailable() bool  { return p.cfg.APIKey != "" }
func (p *googleProvider) Priority() int      { return PriorityFallback }

// resolveModel keeps Gemini model names and maps anything else to the default.
func (p *googleProvider) resolveModel(model string) string {
	if strings.HasPrefix(model, modelPrefixGemini) {
		return model
	}

	return p.cfg.DefaultModel
}

func (p *googleProvider) complete(ctx context.Context, prompt, model string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiterFmt, err)
	}

	genModel := p.client.GenerativeModel(p.resolveModel(model))

	resp, err := genModel.GenerateContent(ctx, genai.Text(sanitizeUTF8(prompt)))
	if err != nil {
		return "", fmt.Errorf(errGoogleGenAIFmt, err)
	}

	text := strings.TrimSpace(extractGoogleResponseText(resp))
	if text == "" {
		return "", ErrEmptyCompletion
	}

	return text, nil
}

// sanitizeUTF8 replaces invalid UTF-8 bytes; the Gemini API rejects them and
// scraped Korean pages often carry mis-decoded bytes.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

func extractGoogleResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var result strings.Builder

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.WriteString(string(text))
			}
		}
	}

	return result.String()
}
