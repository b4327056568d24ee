package links

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"

	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
)

// ErrTooManyRedirects indicates too many HTTP redirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// ErrHTTPStatusNotOK indicates an HTTP response with a non-200 status code.
var ErrHTTPStatusNotOK = errors.New("HTTP status not OK")

// ErrUnsupportedScheme is returned for anything but http and https URLs.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

const (
	defaultFetchTimeout = 10 * time.Second
	globalLimiterBurst  = 5
	maxRedirects        = 5
	maxBodySizeBytes    = 5 * 1024 * 1024
	domainLimiterRate   = 1
	domainLimiterBurst  = 2
	charsetUTF8         = "utf-8"
)

// WebFetcher downloads article pages with a global and a per-domain rate
// limit and returns the body decoded to UTF-8.
type WebFetcher struct {
	client         *http.Client
	globalLimiter  *rate.Limiter
	domainLimiters map[string]*rate.Limiter
	mu             sync.RWMutex
	userAgent      string
}

// NewWebFetcher creates a fetcher. rps <= 0 means 1 request per second.
func NewWebFetcher(rps float64, timeout time.Duration) *WebFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	if rps <= 0 {
		rps = 1
	}

	return &WebFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}

				return nil
			},
		},
		globalLimiter:  rate.NewLimiter(rate.Limit(rps), globalLimiterBurst),
		domainLimiters: make(map[string]*rate.Limiter),
		userAgent:      "Mozilla/5.0 (compatible; KEnterBot/1.0; News Aggregator)",
	}
}

// Fetch downloads rawURL. Bodies are capped at 5 MB.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := f.fetch(ctx, rawURL)
	if err != nil {
		observability.WebFetchRequests.WithLabelValues(observability.StatusError).Inc()
		return nil, err
	}

	observability.WebFetchRequests.WithLabelValues(observability.StatusSuccess).Inc()

	return body, nil
}

func (f *WebFetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if err := f.globalLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("global rate limiter wait: %w", err)
	}

	if err := f.getDomainLimiter(strings.ToLower(u.Host)).Wait(ctx); err != nil {
		return nil, fmt.Errorf("domain rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatusNotOK, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return decodeToUTF8(body, resp.Header.Get("Content-Type"))
}

// decodeToUTF8 converts legacy encodings such as EUC-KR. A charset in the
// Content-Type header wins; otherwise valid UTF-8 is kept as is and anything
// else is sniffed from the BOM and meta tags.
func decodeToUTF8(body []byte, contentType string) ([]byte, error) {
	enc, name := headerEncoding(contentType)
	if enc == nil {
		if utf8.Valid(body) {
			return body, nil
		}

		enc, name, _ = charset.DetermineEncoding(body, contentType)
	}

	if enc == nil || name == charsetUTF8 {
		return body, nil
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", name, err)
	}

	return bytes.TrimPrefix(decoded, []byte("\ufeff")), nil
}

func headerEncoding(contentType string) (encoding.Encoding, string) {
	if contentType == "" {
		return nil, ""
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return nil, ""
	}

	enc, err := htmlindex.Get(params["charset"])
	if err != nil {
		return nil, ""
	}

	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, ""
	}

	return enc, name
}

func (f *WebFetcher) getDomainLimiter(domain string) *rate.Limiter {
	f.mu.RLock()
	limiter, exists := f.domainLimiters[domain]
	f.mu.RUnlock()

	if exists {
		return limiter
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if limiter, exists := f.domainLimiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(domainLimiterRate, domainLimiterBurst)
	f.domainLimiters[domain] = limiter

	return limiter
}
