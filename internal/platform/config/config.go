package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Category catalog
	CategoriesFile string `env:"CATEGORIES_FILE" envDefault:""`

	// Retention
	MaxItemsPerCategory int           `env:"MAX_ITEMS_PER_CATEGORY" envDefault:"30"`
	LiveTTL             time.Duration `env:"LIVE_TTL" envDefault:"24h"`
	ArchiveMinScore     float32       `env:"ARCHIVE_MIN_SCORE" envDefault:"7.0"`
	ArchiveTopRank      int           `env:"ARCHIVE_TOP_RANK" envDefault:"3"`

	// Deduplication
	MinSaveScore             float32       `env:"MIN_SAVE_SCORE" envDefault:"4.0"`
	UniqueKeywords           bool          `env:"UNIQUE_KEYWORDS" envDefault:"true"`
	KeywordCooldown          time.Duration `env:"KEYWORD_COOLDOWN" envDefault:"4h"`
	PlaceholderImageHosts    []string      `env:"PLACEHOLDER_IMAGE_HOSTS" envSeparator:"," envDefault:"placehold.co"`
	TitleSimilarityThreshold float32       `env:"TITLE_SIMILARITY_THRESHOLD" envDefault:"0.92"`

	// Collection
	HeadlineMaxAge        time.Duration `env:"HEADLINE_MAX_AGE" envDefault:"24h"`
	HeadlinesPerQuery     int           `env:"HEADLINES_PER_QUERY" envDefault:"100"`
	RankingSize           int           `env:"RANKING_SIZE" envDefault:"10"`
	ArticlesPerKeyword    int           `env:"ARTICLES_PER_KEYWORD" envDefault:"2"`
	MaxArticleChars       int           `env:"MAX_ARTICLE_CHARS" envDefault:"1500"`
	TrendingKeywordsLimit int           `env:"TRENDING_KEYWORDS_LIMIT" envDefault:"10"`
	GoogleTrendsEnabled   bool          `env:"GOOGLE_TRENDS_ENABLED" envDefault:"false"`
	GoogleTrendsGeo       string        `env:"GOOGLE_TRENDS_GEO" envDefault:"KR"`
	RSSFeeds              []string      `env:"RSS_FEEDS" envSeparator:","`

	// Naver News API
	NaverClientID     string `env:"NAVER_CLIENT_ID"`
	NaverClientSecret string `env:"NAVER_CLIENT_SECRET"`
	NaverSort         string `env:"NAVER_SORT" envDefault:"date"`

	// Google Custom Search
	GoogleSearchAPIKey   string `env:"GOOGLE_SEARCH_API_KEY"`
	GoogleSearchEngineID string `env:"GOOGLE_SEARCH_ENGINE_ID"`

	// Article fetching
	WebFetchRPS     float64       `env:"WEB_FETCH_RPS" envDefault:"2"`
	WebFetchTimeout time.Duration `env:"WEB_FETCH_TIMEOUT" envDefault:"10s"`

	// LLM providers
	GroqAPIKey       string        `env:"GROQ_API_KEY"`
	GroqModel        string        `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	OpenRouterAPIKey string        `env:"OPENROUTER_API_KEY"`
	OpenRouterModel  string        `env:"OPENROUTER_MODEL" envDefault:"meta-llama/llama-3.1-8b-instruct"`
	PerplexityAPIKey string        `env:"PERPLEXITY_API_KEY"`
	PerplexityModel  string        `env:"PERPLEXITY_MODEL" envDefault:"sonar"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIModel      string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GoogleAPIKey     string        `env:"GOOGLE_API_KEY"`
	GoogleModel      string        `env:"GOOGLE_MODEL" envDefault:"gemini-2.0-flash-lite"`
	LLMRateLimitRPS  int           `env:"LLM_RATE_LIMIT_RPS" envDefault:"1"`
	LLMTimeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMCircuitThresh int           `env:"LLM_CIRCUIT_THRESHOLD" envDefault:"3"`
	LLMCircuitReset  time.Duration `env:"LLM_CIRCUIT_RESET" envDefault:"2m"`
	EmbeddingsModel  string        `env:"EMBEDDINGS_MODEL" envDefault:"text-embedding-3-small"`

	// Telegram notifications
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	// Scheduler
	ScrapeCron              string        `env:"SCRAPE_CRON" envDefault:"0,30 * * * *"`
	KeywordsRefreshInterval time.Duration `env:"KEYWORDS_REFRESH_INTERVAL" envDefault:"15m"`
	ArchiveInterval         time.Duration `env:"ARCHIVE_INTERVAL" envDefault:"1h"`
	RunTimeout              time.Duration `env:"RUN_TIMEOUT" envDefault:"20m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyLegacyAliases(cfg)

	return cfg, nil
}

// applyLegacyAliases honours variable names used by older deployments.
func applyLegacyAliases(cfg *Config) {
	if !hasEnv("MAX_ITEMS_PER_CATEGORY") {
		setIntFromEnv("MAX_LIVE_ITEMS", &cfg.MaxItemsPerCategory)
	}

	if !hasEnv("GOOGLE_SEARCH_API_KEY") {
		setStringFromEnv("GOOGLE_CSE_KEY", &cfg.GoogleSearchAPIKey)
	}

	if !hasEnv("ARCHIVE_MIN_SCORE") {
		setFloat32FromEnv("ARCHIVE_SCORE", &cfg.ArchiveMinScore)
	}

	if !hasEnv("LIVE_TTL") {
		setDurationFromEnv("LIVE_NEWS_TTL", &cfg.LiveTTL)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setIntFromEnv(key string, target *int) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}

func setFloat32FromEnv(key string, target *float32) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 32)
	if err != nil {
		return
	}

	*target = float32(parsed)
}

func setDurationFromEnv(key string, target *time.Duration) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}
