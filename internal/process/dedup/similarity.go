package dedup

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

// Log key constants for deduplication.
const (
	logKeySkippedID   = "skipped_id"
	logKeyDuplicateOf = "duplicate_of"
	logKeyReason      = "reason"
	logKeyCategory    = "category"
)

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the vectors differ in length or either is all zeros.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float32

	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// SimilarResult contains the result of embedding deduplication.
type SimilarResult[T domain.Scorable] struct {
	// Items contains the kept items, in input order.
	Items []T

	// DuplicateMap maps dropped item IDs to the ID of the item they duplicated.
	DuplicateMap map[string]string
}

// DeduplicateSimilar keeps the first of every group of items whose embeddings
// are more similar than threshold. Items without embeddings are always kept.
func DeduplicateSimilar[T domain.Scorable](items []T, threshold float32, logger *zerolog.Logger) SimilarResult[T] {
	result := SimilarResult[T]{
		Items:        make([]T, 0, len(items)),
		DuplicateMap: make(map[string]string),
	}

	for _, item := range items {
		duplicateOf := findSimilar(item, result.Items, threshold)
		if duplicateOf == "" {
			result.Items = append(result.Items, item)

			continue
		}

		result.DuplicateMap[item.GetID()] = duplicateOf

		if logger != nil {
			logger.Debug().
				Str(logKeySkippedID, item.GetID()).
				Str(logKeyDuplicateOf, duplicateOf).
				Msg("Dropping similar title")
		}
	}

	return result
}

func findSimilar[T domain.Scorable](item T, kept []T, threshold float32) string {
	embedding := item.GetEmbedding()
	if len(embedding) == 0 {
		return ""
	}

	for _, k := range kept {
		if CosineSimilarity(embedding, k.GetEmbedding()) > threshold {
			return k.GetID()
		}
	}

	return ""
}
