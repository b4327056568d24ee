// Package sources collects raw headlines from search APIs and feeds.
package sources

import (
	"context"
	"fmt"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/core/errors"
)

// Source names, also used as metric labels.
const (
	SourceNaver     = "naver"
	SourceGoogleCSE = "google_cse"
	SourceRSS       = "rss"
)

// ErrSourceDisabled is returned by a source without credentials.
var ErrSourceDisabled = fmt.Errorf("source %w", errors.ErrClientDisabled)

// Request is one search against a source.
type Request struct {
	Query string
	// Feeds lists category specific feed URLs; only the RSS source reads it.
	Feeds []string
	Limit int
}

// Source searches a single upstream for headlines.
type Source interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, req Request) ([]domain.Headline, error)
}

// headlineKey identifies a headline across sources.
func headlineKey(h domain.Headline) string {
	if h.OriginalLink != "" {
		return h.OriginalLink
	}

	return h.Link
}
