package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
)

// GoogleTrendsURL is the daily trending searches feed.
const GoogleTrendsURL = "https://trends.google.com/trending/rss"

const defaultTrendsGeo = "KR"

// TrendsConfig configures the Google Trends hint source.
type TrendsConfig struct {
	Geo string
	// Endpoint overrides GoogleTrendsURL.
	Endpoint string
	Timeout  time.Duration
}

// Trends reads today's trending searches. They are passed to the ranking
// prompt as hints, never stored.
type Trends struct {
	cfg        TrendsConfig
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewTrends creates a Google Trends client.
func NewTrends(cfg TrendsConfig, logger *zerolog.Logger) *Trends {
	if cfg.Geo == "" {
		cfg.Geo = defaultTrendsGeo
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = GoogleTrendsURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = feedDefaultTimeout
	}

	return &Trends{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}, logger: logger}
}

// Keywords returns up to limit distinct trending search terms.
func (t *Trends) Keywords(ctx context.Context, limit int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.Endpoint+"?geo="+url.QueryEscape(t.cfg.Geo), nil)
	if err != nil {
		return nil, fmt.Errorf("create trends request: %w", err)
	}

	req.Header.Set(headerUserAgent, feedUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trends: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", errFeedFetchFailed, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse trends feed: %w", err)
	}

	seen := make(map[string]bool, len(feed.Items))
	out := make([]string, 0, len(feed.Items))

	for _, item := range feed.Items {
		term := strings.TrimSpace(item.Title)
		if term == "" || seen[term] {
			continue
		}

		seen[term] = true
		out = append(out, term)

		if limit > 0 && len(out) == limit {
			break
		}
	}

	t.logger.Debug().Int("count", len(out)).Str("geo", t.cfg.Geo).Msg("loaded trending searches")

	return out, nil
}
