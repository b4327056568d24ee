package rankings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
)

func r(rank int, keyword string) domain.Ranking {
	return domain.Ranking{Rank: rank, Keyword: keyword}
}

func TestComputeDeltas(t *testing.T) {
	previous := []domain.Ranking{r(1, "NewJeans"), r(2, "aespa"), r(3, "IVE"), r(4, "ILLIT")}
	current := []domain.Ranking{r(1, "aespa"), r(2, "newjeans"), r(3, "IVE"), r(4, "RIIZE"), r(5, "BTS")}

	got := ComputeDeltas(previous, current)

	deltas := make([]string, len(got))
	for i, g := range got {
		deltas[i] = g.Delta
	}

	assert.Equal(t, []string{"▲1", "▼1", "-", "NEW", "NEW"}, deltas)
}

func TestComputeDeltas_BigMoves(t *testing.T) {
	previous := []domain.Ranking{r(10, "a"), r(1, "b")}
	current := []domain.Ranking{r(1, "a"), r(7, "b")}

	got := ComputeDeltas(previous, current)

	assert.Equal(t, "▲9", got[0].Delta)
	assert.Equal(t, "▼6", got[1].Delta)
}

func TestComputeDeltas_NoPrevious(t *testing.T) {
	got := ComputeDeltas(nil, []domain.Ranking{r(1, "a")})
	assert.Equal(t, DeltaNew, got[0].Delta)
}

func TestNormalize(t *testing.T) {
	in := []domain.Ranking{r(3, "a"), r(1, ""), r(2, "A "), r(9, "b"), r(4, "c")}

	got := Normalize("K-Pop", in, 2)

	assert.Equal(t, []domain.Ranking{
		{Category: "K-Pop", Rank: 1, Keyword: "a"},
		{Category: "K-Pop", Rank: 2, Keyword: "b"},
	}, got)
}
