package domain

import "time"

// Category is a news category the bot rotates through.
type Category struct {
	Name      string
	SortOrder int
	Queries   []string
	Feeds     []string
	MaxItems  int
}

// LiveItem is a summarized article shown in the bounded live table.
type LiveItem struct {
	ID        string
	Category  string
	Keyword   string
	Title     string
	Summary   string
	Link      string
	ImageURL  string
	Score     float32
	Rank      int
	Likes     int
	Dislikes  int
	Embedding []float32
	CreatedAt time.Time
}

// Ranking is one position of a category's trending keyword chart.
type Ranking struct {
	Category  string
	Rank      int
	Keyword   string
	MetaInfo  string
	Score     float32
	Delta     string
	ImageURL  string
	UpdatedAt time.Time
}

// ArchiveEntry is a permanently kept copy of a high-scoring or top-ranked live item.
type ArchiveEntry struct {
	ID           string
	Category     string
	Keyword      string
	Title        string
	Summary      string
	ImageURL     string
	OriginalLink string
	Score        float32
	Rank         int
	CreatedAt    time.Time
	ArchivedAt   time.Time
}

// TrendingKeyword is a cross-category keyword counter.
type TrendingKeyword struct {
	Keyword   string
	Count     int
	Rank      int
	UpdatedAt time.Time
}

// Headline is a raw search or feed result before any LLM processing.
type Headline struct {
	Title        string
	Description  string
	Link         string
	OriginalLink string
	Source       string
	ImageURL     string
	Query        string
	PublishedAt  time.Time
}

// Vote types accepted for live items.
const (
	VoteLikes    = "likes"
	VoteDislikes = "dislikes"
)

// RankUpdate assigns a new rank to a live item.
type RankUpdate struct {
	ID   string
	Rank int
}
