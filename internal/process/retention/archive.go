package retention

import (
	"time"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// SelectForArchive returns the items worth keeping permanently: those scoring
// at least ArchiveMinScore, and those ranked 1..ArchiveTopRank. Top-ranked
// entries keep their live rank; score-only selections are archived with rank 0.
// Items without a link are skipped since the archive is keyed by it.
func SelectForArchive(items []domain.LiveItem, policy Policy, now time.Time) []domain.ArchiveEntry {
	entries := make([]domain.ArchiveEntry, 0)
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if item.Link == "" {
			continue
		}

		topRanked := policy.ArchiveTopRank > 0 && item.Rank >= 1 && item.Rank <= policy.ArchiveTopRank
		highScore := item.Score >= policy.ArchiveMinScore

		if !topRanked && !highScore {
			continue
		}

		if _, dup := seen[item.Link]; dup {
			continue
		}

		seen[item.Link] = struct{}{}

		rank := 0
		if topRanked {
			rank = item.Rank
		}

		entries = append(entries, domain.ArchiveEntry{
			Category:     item.Category,
			Keyword:      item.Keyword,
			Title:        item.Title,
			Summary:      item.Summary,
			ImageURL:     item.ImageURL,
			OriginalLink: item.Link,
			Score:        item.Score,
			Rank:         rank,
			CreatedAt:    item.CreatedAt,
			ArchivedAt:   now,
		})
	}

	return entries
}
