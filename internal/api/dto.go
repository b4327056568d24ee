package api

import (
	"time"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

type categoryDTO struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	MaxItems  int    `json:"max_items"`
}

type newsDTO struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Keyword   string    `json:"keyword"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Link      string    `json:"link"`
	ImageURL  string    `json:"image_url,omitempty"`
	Score     float32   `json:"score"`
	Rank      int       `json:"rank"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	CreatedAt time.Time `json:"created_at"`
}

func toNewsDTO(it domain.LiveItem) newsDTO {
	return newsDTO{
		ID:        it.ID,
		Category:  it.Category,
		Keyword:   it.Keyword,
		Title:     it.Title,
		Summary:   it.Summary,
		Link:      it.Link,
		ImageURL:  it.ImageURL,
		Score:     it.Score,
		Rank:      it.Rank,
		Likes:     it.Likes,
		Dislikes:  it.Dislikes,
		CreatedAt: it.CreatedAt,
	}
}

type rankingDTO struct {
	Rank      int       `json:"rank"`
	Keyword   string    `json:"keyword"`
	MetaInfo  string    `json:"meta_info,omitempty"`
	Score     float32   `json:"score"`
	Delta     string    `json:"delta"`
	ImageURL  string    `json:"image_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRankingDTO(r domain.Ranking) rankingDTO {
	return rankingDTO{
		Rank:      r.Rank,
		Keyword:   r.Keyword,
		MetaInfo:  r.MetaInfo,
		Score:     r.Score,
		Delta:     r.Delta,
		ImageURL:  r.ImageURL,
		UpdatedAt: r.UpdatedAt,
	}
}

type keywordDTO struct {
	Rank      int       `json:"rank"`
	Keyword   string    `json:"keyword"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type archiveDTO struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Keyword      string    `json:"keyword"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	ImageURL     string    `json:"image_url,omitempty"`
	OriginalLink string    `json:"original_link"`
	Score        float32   `json:"score"`
	Rank         int       `json:"rank"`
	ArchivedAt   time.Time `json:"archived_at"`
}

func toArchiveDTO(e domain.ArchiveEntry) archiveDTO {
	return archiveDTO{
		ID:           e.ID,
		Category:     e.Category,
		Keyword:      e.Keyword,
		Title:        e.Title,
		Summary:      e.Summary,
		ImageURL:     e.ImageURL,
		OriginalLink: e.OriginalLink,
		Score:        e.Score,
		Rank:         e.Rank,
		ArchivedAt:   e.ArchivedAt,
	}
}

type voteRequest struct {
	Type string `json:"type"`
}

type voteResponse struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
}

type errorResponse struct {
	Error string `json:"error"`
}
