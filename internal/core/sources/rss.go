package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/platform/htmlutils"
)

const (
	// FeedEntriesPerFeed is how many of the newest entries of a feed are considered.
	FeedEntriesPerFeed = 20

	feedCacheTTL       = 10 * time.Minute
	feedDefaultTimeout = 10 * time.Second
	headerUserAgent    = "User-Agent"
	feedUserAgent      = "KEnterBot/1.0 (News Aggregator)"
)

var errFeedFetchFailed = errors.New("feed fetch failed")

// RSSConfig configures the feed source.
type RSSConfig struct {
	// Feeds are used when a request carries no category feeds.
	Feeds   []string
	Timeout time.Duration
}

type cachedFeed struct {
	items     []*gofeed.Item
	fetchedAt time.Time
}

// RSS matches queries against the newest entries of entertainment news feeds.
type RSS struct {
	defaultFeeds []string
	httpClient   *http.Client
	logger       *zerolog.Logger
	now          func() time.Time

	mu    sync.Mutex
	cache map[string]cachedFeed
}

// NewRSS creates a feed source.
func NewRSS(cfg RSSConfig, logger *zerolog.Logger) *RSS {
	if cfg.Timeout <= 0 {
		cfg.Timeout = feedDefaultTimeout
	}

	return &RSS{
		defaultFeeds: cfg.Feeds,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
		now:          time.Now,
		cache:        make(map[string]cachedFeed),
	}
}

func (r *RSS) Name() string { return SourceRSS }

// Enabled is always true; a request without feeds simply returns nothing.
func (r *RSS) Enabled() bool { return true }

// Search returns feed entries whose title or description contains the query.
func (r *RSS) Search(ctx context.Context, req Request) ([]domain.Headline, error) {
	feeds := req.Feeds
	if len(feeds) == 0 {
		feeds = r.defaultFeeds
	}

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(req.Query))

	var (
		headlines []domain.Headline
		errs      []error
	)

	for _, feedURL := range feeds {
		items, err := r.items(ctx, feedURL)
		if err != nil {
			errs = append(errs, err)

			r.logger.Warn().Err(err).Str("feed", feedURL).Msg("feed fetch failed")

			continue
		}

		for _, item := range items {
			title := htmlutils.StripHTMLTags(item.Title)
			desc := htmlutils.StripHTMLTags(item.Description)

			if needle != "" && !strings.Contains(fold.String(title+" "+desc), needle) {
				continue
			}

			headlines = append(headlines, domain.Headline{
				Title:       title,
				Description: desc,
				Link:        item.Link,
				Source:      SourceRSS,
				ImageURL:    feedImage(item),
				Query:       req.Query,
				PublishedAt: feedPublished(item),
			})

			if req.Limit > 0 && len(headlines) >= req.Limit {
				return headlines, nil
			}
		}
	}

	if len(headlines) == 0 && len(errs) > 0 && len(errs) == len(feeds) {
		return nil, errors.Join(errs...)
	}

	return headlines, nil
}

// items returns the newest entries of a feed, cached for a few minutes so
// several queries of one run share a download.
func (r *RSS) items(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	r.mu.Lock()
	cached, ok := r.cache[feedURL]
	r.mu.Unlock()

	if ok && r.now().Sub(cached.fetchedAt) < feedCacheTTL {
		return cached.items, nil
	}

	feed, err := r.fetchFeed(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	items := feed.Items
	if len(items) > FeedEntriesPerFeed {
		items = items[:FeedEntriesPerFeed]
	}

	r.mu.Lock()
	r.cache[feedURL] = cachedFeed{items: items, fetchedAt: r.now()}
	r.mu.Unlock()

	return items, nil
}

func (r *RSS) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}

	req.Header.Set(headerUserAgent, feedUserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", errFeedFetchFailed, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return feed, nil
}

func feedImage(item *gofeed.Item) string {
	if item.Image != nil {
		return item.Image.URL
	}

	for _, enclosure := range item.Enclosures {
		if strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}

	return ""
}

func feedPublished(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}
