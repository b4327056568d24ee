package llm

import "github.com/lueurxax/kenter-news-bot/internal/platform/config"

// TaskType identifies the type of LLM task.
type TaskType string

// Task type constants.
const (
	TaskTypeRankKeywords TaskType = "rank_keywords"
	TaskTypeSummarize    TaskType = "summarize"
	TaskTypeTranslate    TaskType = "translate"
)

// ProviderModel specifies a provider and model combination.
type ProviderModel struct {
	Provider ProviderName
	Model    string
}

// TaskProviderChain defines the provider/model fallback chain for a task.
type TaskProviderChain struct {
	Default   ProviderModel
	Fallbacks []ProviderModel
}

// BuildTaskConfig returns the per-task chains using the configured models.
// Ranking goes to Groq first, summaries to Gemini first, translation to the
// cheapest OpenRouter model first.
func BuildTaskConfig(cfg *config.Config) map[TaskType]TaskProviderChain {
	groq := ProviderModel{Provider: ProviderGroq, Model: cfg.GroqModel}
	google := ProviderModel{Provider: ProviderGoogle, Model: cfg.GoogleModel}
	openAI := ProviderModel{Provider: ProviderOpenAI, Model: cfg.OpenAIModel}
	openRouter := ProviderModel{Provider: ProviderOpenRouter, Model: cfg.OpenRouterModel}
	perplexity := ProviderModel{Provider: ProviderPerplexity, Model: cfg.PerplexityModel}

	return map[TaskType]TaskProviderChain{
		TaskTypeRankKeywords: {
			Default:   groq,
			Fallbacks: []ProviderModel{perplexity, google, openAI},
		},
		TaskTypeSummarize: {
			Default:   google,
			Fallbacks: []ProviderModel{groq, openAI, openRouter},
		},
		TaskTypeTranslate: {
			Default:   openRouter,
			Fallbacks: []ProviderModel{google, openAI},
		},
	}
}

// GetProviderChain returns the ordered list of provider/model combinations for a task.
func (tc TaskProviderChain) GetProviderChain() []ProviderModel {
	chain := make([]ProviderModel, 0, 1+len(tc.Fallbacks))
	chain = append(chain, tc.Default)
	chain = append(chain, tc.Fallbacks...)

	return chain
}
