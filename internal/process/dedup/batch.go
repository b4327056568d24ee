// Package dedup drops candidate live items that would repeat what a category
// already shows: same link, same keyword, same picture or a near-identical title.
package dedup

import (
	"net/url"
	"strings"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// Reason explains why a candidate was dropped.
type Reason string

const (
	ReasonLowScore         Reason = "low_score"
	ReasonDuplicateLink    Reason = "duplicate_link"
	ReasonDuplicateKeyword Reason = "duplicate_keyword"
	ReasonDuplicateImage   Reason = "duplicate_image"
	ReasonExistingLink     Reason = "existing_link"
	ReasonRecentKeyword    Reason = "recent_keyword"
	ReasonSimilarTitle     Reason = "similar_title"
)

// Defaults.
const (
	DefaultMinScore        = 4.0
	DefaultPlaceholderHost = "placehold.co"
)

// Options controls FilterBatch.
type Options struct {
	// MinScore drops items scoring strictly below it.
	MinScore float32
	// UniqueKeywords keeps at most one item per normalized keyword.
	UniqueKeywords bool
	// PlaceholderHosts are image hosts never treated as duplicates.
	PlaceholderHosts []string
}

// DefaultOptions returns MinScore 4.0, unique keywords and placehold.co.
func DefaultOptions() Options {
	return Options{
		MinScore:         DefaultMinScore,
		UniqueKeywords:   true,
		PlaceholderHosts: []string{DefaultPlaceholderHost},
	}
}

// Dropped is a rejected candidate with the reason it was rejected.
type Dropped struct {
	Item   domain.LiveItem
	Reason Reason
	// DuplicateOf names the conflicting item or link when known.
	DuplicateOf string
}

// FilterBatch applies the in-memory rules to one batch of candidates, in
// order: score floor, duplicate link, duplicate keyword, duplicate image.
// The first occurrence wins; only kept items claim a link, keyword or image.
func FilterBatch(items []domain.LiveItem, opts Options) ([]domain.LiveItem, []Dropped) {
	kept := make([]domain.LiveItem, 0, len(items))

	var dropped []Dropped

	seenLinks := make(map[string]string)
	seenKeywords := make(map[string]string)
	seenImages := make(map[string]string)

	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		keyword := NormalizeKeyword(item.Keyword)
		image := strings.TrimSpace(item.ImageURL)

		switch {
		case item.Score < opts.MinScore:
			dropped = append(dropped, Dropped{Item: item, Reason: ReasonLowScore})

			continue
		case hasKey(seenLinks, link):
			dropped = append(dropped, Dropped{Item: item, Reason: ReasonDuplicateLink, DuplicateOf: link})

			continue
		case opts.UniqueKeywords && keyword != "" && hasKey(seenKeywords, keyword):
			dropped = append(dropped, Dropped{Item: item, Reason: ReasonDuplicateKeyword, DuplicateOf: seenKeywords[keyword]})

			continue
		}

		checkImage := image != "" && !IsPlaceholderImage(image, opts.PlaceholderHosts)
		if checkImage && hasKey(seenImages, image) {
			dropped = append(dropped, Dropped{Item: item, Reason: ReasonDuplicateImage, DuplicateOf: seenImages[image]})

			continue
		}

		seenLinks[link] = item.Link

		if keyword != "" {
			seenKeywords[keyword] = item.Link
		}

		if checkImage {
			seenImages[image] = item.Link
		}

		kept = append(kept, item)
	}

	return kept, dropped
}

// IsPlaceholderImage reports whether imageURL points at one of the
// placeholder hosts (or a subdomain of one).
func IsPlaceholderImage(imageURL string, hosts []string) bool {
	host := ""
	if u, err := url.Parse(imageURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}

		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}

		if host == "" && strings.Contains(strings.ToLower(imageURL), h) {
			return true
		}
	}

	return false
}

func hasKey(m map[string]string, k string) bool {
	_, ok := m[k]

	return ok
}
