package pipeline

import "time"

// Log field constants
const (
	LogFieldCategory = "category"
	LogFieldKeyword  = "keyword"
	LogFieldLink     = "link"
	LogFieldCount    = "count"
	LogFieldRunID    = "run_id"
)

// Defaults applied when Config leaves a field at zero.
const (
	DefaultRankingSize        = 10
	DefaultArticlesPerKeyword = 2
	DefaultHintsLimit         = 10
	DefaultMaxArticleChars    = 1500

	// Score fallback for summaries without a model score: 10 - 0.5 * position.
	fallbackScoreBase = 10.0
	fallbackScoreStep = 0.5
	scoreMin          = 0.0
	scoreMax          = 10.0

	// Extra search results requested so that dead links can be skipped.
	searchOverfetch = 3

	runIDShortLen = 8

	notifyTimeout = 30 * time.Second
)
