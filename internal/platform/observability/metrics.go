package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HeadlinesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_headlines_fetched_total",
		Help: "The total number of headlines fetched from news sources",
	}, []string{"source", "category"})

	SourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_source_errors_total",
		Help: "The total number of failed news source requests",
	}, []string{"source"})

	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_pipeline_runs_total",
		Help: "The total number of category pipeline runs by status",
	}, []string{"category", "status"})

	PipelineRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kenter_pipeline_run_duration_seconds",
		Help:    "Duration of a category pipeline run",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
	}, []string{"category"})

	ItemsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_items_saved_total",
		Help: "The total number of live items upserted",
	}, []string{"category"})

	ItemsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_items_rejected_total",
		Help: "The total number of candidate items rejected before saving",
	}, []string{"reason"})

	ItemsEvicted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_items_evicted_total",
		Help: "The total number of live items evicted by slot management",
	}, []string{"category", "reason"})

	ItemsArchived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_items_archived_total",
		Help: "The total number of live items copied to the archive",
	}, []string{"category"})

	LiveItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kenter_live_items",
		Help: "Number of live items per category after slot management",
	}, []string{"category"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kenter_llm_request_duration_seconds",
		Help:    "Duration of LLM requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "task"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_llm_requests_total",
		Help: "The total number of LLM requests by provider, task and status",
	}, []string{"provider", "task", "status"})

	LLMFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_llm_fallbacks_total",
		Help: "The total number of LLM provider fallbacks",
	}, []string{"from", "to", "task"})

	LLMCircuitBreakerOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kenter_llm_circuit_breaker_open",
		Help: "Whether the circuit breaker for a provider is open (1) or closed (0)",
	}, []string{"provider"})

	EmbeddingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_embedding_requests_total",
		Help: "The total number of embedding requests by provider and status",
	}, []string{"provider", "status"})

	EmbeddingRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kenter_embedding_request_duration_seconds",
		Help:    "Duration of embedding requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	WebFetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_web_fetch_requests_total",
		Help: "The total number of article page fetches by status",
	}, []string{"status"})

	TrendingKeywordsRefreshed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kenter_trending_keywords",
		Help: "Number of trending keywords stored in the last refresh",
	})

	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_votes_total",
		Help: "The total number of reader votes by type",
	}, []string{"type"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kenter_notifications_total",
		Help: "The total number of Telegram notifications by status",
	}, []string{"status"})
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)
