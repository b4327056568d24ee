package llm

// Error message templates.
const (
	errRateLimiterFmt    = "rate limiter: %w"
	errChatCompletionFmt = "%s chat completion: %w"
	errGoogleGenAIFmt    = "google genai completion: %w"
	errParseResponseFmt  = "failed to parse response: %w"
)

// Log key strings.
const (
	logKeyProvider = "provider"
	logKeyTask     = "task"
	logKeyModel    = "model"
	logKeyCategory = "category"
)

const logMsgCircuitBreakerOpen = "skipping provider - circuit breaker open"

// Prompt format strings.
const (
	indexedItemFormat  = "[%d] %s\n"
	translatePromptFmt = "Translate to %s. Output ONLY the translation, nothing else. The output must be in %s language.\n\n%s"
)

const (
	llmAPIKeyMock      = "mock"
	defaultRankLimit   = 10
	maxSummaryInputLen = 6000
	scoreMin           = 0
	scoreMax           = 10
)
