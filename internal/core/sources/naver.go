package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/core/errors"
	"github.com/lueurxax/kenter-news-bot/internal/platform/htmlutils"
)

// NaverNewsURL is the Naver news search endpoint.
const NaverNewsURL = "https://openapi.naver.com/v1/search/news.json"

// Naver sort orders.
const (
	NaverSortSim  = "sim"
	NaverSortDate = "date"
)

const (
	naverMaxDisplay     = 100
	naverRateLimit      = 10
	naverRateBurst      = 5
	naverDefaultTimeout = 5 * time.Second

	headerNaverClientID     = "X-Naver-Client-Id"
	headerNaverClientSecret = "X-Naver-Client-Secret"
)

// NaverConfig configures the Naver news client.
type NaverConfig struct {
	ClientID     string
	ClientSecret string
	Sort         string
	// Endpoint overrides NaverNewsURL.
	Endpoint string
	Timeout  time.Duration
}

// Naver searches the Naver news API.
type Naver struct {
	cfg     NaverConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

type naverResponse struct {
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// NewNaver creates a Naver news source.
func NewNaver(cfg NaverConfig, logger *zerolog.Logger) *Naver {
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)

	if cfg.Endpoint == "" {
		cfg.Endpoint = NaverNewsURL
	}

	if cfg.Sort != NaverSortSim {
		cfg.Sort = NaverSortDate
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = naverDefaultTimeout
	}

	return &Naver{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(naverRateLimit, naverRateBurst),
		logger:  logger,
	}
}

func (n *Naver) Name() string { return SourceNaver }

func (n *Naver) Enabled() bool { return n.cfg.ClientID != "" && n.cfg.ClientSecret != "" }

// Search returns up to req.Limit (max 100) headlines for the query.
func (n *Naver) Search(ctx context.Context, req Request) ([]domain.Headline, error) {
	if !n.Enabled() {
		return nil, fmt.Errorf("naver: %w: %w", ErrSourceDisabled, errors.ErrMissingCredentials)
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("naver rate limiter: %w", err)
	}

	display := req.Limit
	if display <= 0 || display > naverMaxDisplay {
		display = naverMaxDisplay
	}

	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("display", strconv.Itoa(display))
	params.Set("sort", n.cfg.Sort)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, n.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create naver request: %w", err)
	}

	httpReq.Header.Set(headerNaverClientID, n.cfg.ClientID)
	httpReq.Header.Set(headerNaverClientSecret, n.cfg.ClientSecret)

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("naver request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver search: %w: %d", errors.ErrUnexpectedStatus, resp.StatusCode)
	}

	var body naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode naver response: %w", err)
	}

	headlines := make([]domain.Headline, 0, len(body.Items))

	for _, item := range body.Items {
		h := domain.Headline{
			Title:        htmlutils.StripHTMLTags(item.Title),
			Description:  htmlutils.StripHTMLTags(item.Description),
			Link:         item.Link,
			OriginalLink: item.OriginalLink,
			Source:       SourceNaver,
			Query:        req.Query,
		}

		if item.PubDate != "" {
			published, err := dateparse.ParseAny(item.PubDate)
			if err != nil {
				n.logger.Debug().Err(err).Str("pub_date", item.PubDate).Msg("unparsable naver pubDate")
			} else {
				h.PublishedAt = published.UTC()
			}
		}

		if h.Title == "" || headlineKey(h) == "" {
			continue
		}

		headlines = append(headlines, h)
	}

	return headlines, nil
}
