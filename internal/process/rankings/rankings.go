// Package rankings compares a category's new keyword chart with the previous one.
package rankings

import (
	"fmt"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	"github.com/lueurxax/kenter-news-bot/internal/process/dedup"
)

// Delta markers.
const (
	DeltaNew       = "NEW"
	DeltaUnchanged = "-"
	deltaUpFmt     = "▲%d"
	deltaDownFmt   = "▼%d"
)

// ComputeDeltas returns current with Delta filled in against previous:
// NEW for keywords absent before, "-" for the same rank, ▲n when the keyword
// climbed n places and ▼n when it dropped. Keywords are compared normalized.
func ComputeDeltas(previous, current []domain.Ranking) []domain.Ranking {
	before := make(map[string]int, len(previous))

	for _, r := range previous {
		k := dedup.NormalizeKeyword(r.Keyword)
		if _, ok := before[k]; !ok {
			before[k] = r.Rank
		}
	}

	out := make([]domain.Ranking, len(current))

	for i, r := range current {
		r.Delta = Delta(before, r)
		out[i] = r
	}

	return out
}

// Delta formats the movement of one ranking given the previous keyword ranks.
func Delta(before map[string]int, r domain.Ranking) string {
	prev, ok := before[dedup.NormalizeKeyword(r.Keyword)]

	switch {
	case !ok:
		return DeltaNew
	case prev == r.Rank:
		return DeltaUnchanged
	case prev > r.Rank:
		return fmt.Sprintf(deltaUpFmt, prev-r.Rank)
	default:
		return fmt.Sprintf(deltaDownFmt, r.Rank-prev)
	}
}

// Normalize assigns ranks 1..n in order and trims to limit, dropping entries
// with empty keywords or repeating a keyword already ranked.
func Normalize(category string, rankings []domain.Ranking, limit int) []domain.Ranking {
	out := make([]domain.Ranking, 0, len(rankings))
	seen := make(map[string]struct{}, len(rankings))

	for _, r := range rankings {
		k := dedup.NormalizeKeyword(r.Keyword)
		if k == "" {
			continue
		}

		if _, dup := seen[k]; dup {
			continue
		}

		seen[k] = struct{}{}

		r.Category = category
		r.Rank = len(out) + 1
		out = append(out, r)

		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out
}
