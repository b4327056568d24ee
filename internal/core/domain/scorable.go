package domain

import "time"

// Scorable is implemented by entities that can be ranked, evicted and deduplicated.
type Scorable interface {
	GetID() string
	GetScore() float32
	GetTimestamp() time.Time
	GetEmbedding() []float32
}

func (i *LiveItem) GetID() string           { return i.ID }
func (i *LiveItem) GetScore() float32       { return i.Score }
func (i *LiveItem) GetTimestamp() time.Time { return i.CreatedAt }
func (i *LiveItem) GetEmbedding() []float32 { return i.Embedding }
