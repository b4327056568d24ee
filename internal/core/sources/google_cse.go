package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/core/errors"
	"github.com/lueurxax/kenter-news-bot/internal/platform/htmlutils"
)

const (
	cseMaxResults   = 10
	cseDateRestrict = "d1"
)

// GoogleCSEConfig configures the Custom Search client.
type GoogleCSEConfig struct {
	APIKey   string
	EngineID string
	// Endpoint overrides the API base URL.
	Endpoint string
}

// GoogleCSE searches a Programmable Search Engine restricted to news sites.
type GoogleCSE struct {
	cfg    GoogleCSEConfig
	svc    *customsearch.Service
	logger *zerolog.Logger
}

type csePagemap struct {
	Images   []struct{ Src string } `json:"cse_image"`
	Metatags []map[string]string    `json:"metatags"`
}

var csePublishedKeys = []string{"article:published_time", "og:article:published_time", "pubdate"}

// NewGoogleCSE creates the source. A source without credentials is returned disabled.
func NewGoogleCSE(ctx context.Context, cfg GoogleCSEConfig, logger *zerolog.Logger) (*GoogleCSE, error) {
	s := &GoogleCSE{cfg: cfg, logger: logger}
	if !s.Enabled() {
		return s, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}

	s.svc = svc

	return s, nil
}

func (s *GoogleCSE) Name() string { return SourceGoogleCSE }

func (s *GoogleCSE) Enabled() bool { return s.cfg.APIKey != "" && s.cfg.EngineID != "" }

// Search returns results from the last day.
func (s *GoogleCSE) Search(ctx context.Context, req Request) ([]domain.Headline, error) {
	if !s.Enabled() || s.svc == nil {
		return nil, fmt.Errorf("google cse: %w: %w", ErrSourceDisabled, errors.ErrMissingCredentials)
	}

	num := int64(req.Limit)
	if num <= 0 || num > cseMaxResults {
		num = cseMaxResults
	}

	res, err := s.svc.Cse.List().
		Cx(s.cfg.EngineID).
		Q(req.Query).
		DateRestrict(cseDateRestrict).
		Num(num).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("customsearch list: %w", err)
	}

	headlines := make([]domain.Headline, 0, len(res.Items))

	for _, item := range res.Items {
		if item == nil || item.Link == "" {
			continue
		}

		h := domain.Headline{
			Title:       htmlutils.StripHTMLTags(item.Title),
			Description: htmlutils.StripHTMLTags(item.Snippet),
			Link:        item.Link,
			Source:      SourceGoogleCSE,
			Query:       req.Query,
		}

		h.ImageURL, h.PublishedAt = s.parsePagemap(item.Pagemap)
		headlines = append(headlines, h)
	}

	return headlines, nil
}

func (s *GoogleCSE) parsePagemap(raw []byte) (string, time.Time) {
	if len(raw) == 0 {
		return "", time.Time{}
	}

	var pm csePagemap
	if err := json.Unmarshal(raw, &pm); err != nil {
		s.logger.Debug().Err(err).Msg("unparsable cse pagemap")
		return "", time.Time{}
	}

	var image string
	if len(pm.Images) > 0 {
		image = pm.Images[0].Src
	}

	for _, tags := range pm.Metatags {
		for _, key := range csePublishedKeys {
			if v := tags[key]; v != "" {
				if t, err := dateparse.ParseAny(v); err == nil {
					return image, t.UTC()
				}
			}
		}
	}

	return image, time.Time{}
}
