package llm

import "context"

// ProviderName identifies an LLM provider.
type ProviderName string

// Provider name constants.
const (
	ProviderGroq       ProviderName = "groq"
	ProviderOpenRouter ProviderName = "openrouter"
	ProviderPerplexity ProviderName = "perplexity"
	ProviderOpenAI     ProviderName = "openai"
	ProviderGoogle     ProviderName = "google"
	ProviderMock       ProviderName = "mock"
)

// Priority constants for provider ordering.
const (
	PriorityPrimary        = 100 // Groq
	PriorityFallback       = 50  // Google
	PrioritySecondFallback = 25  // OpenAI
	PriorityThirdFallback  = 10  // OpenRouter
	PriorityFourthFallback = 5   // Perplexity
	PriorityMock           = 0
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured and available.
	IsAvailable() bool

	// Priority returns the provider priority (higher = preferred).
	Priority() int

	RankKeywords(ctx context.Context, category string, titles, hints []string, limit int, model string) ([]RankedKeyword, error)
	Summarize(ctx context.Context, keyword string, texts []string, model string) (Summary, error)
	TranslateText(ctx context.Context, text, targetLanguage, model string) (string, error)
}
