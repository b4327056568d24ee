package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOrder = []string{"K-Pop", "K-Drama", "K-Movie", "K-Entertain", "K-Culture"}

func TestSelectCategory(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{name: "midnight", now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), want: "K-Pop"},
		{name: "half past midnight", now: time.Date(2026, 3, 1, 0, 30, 0, 0, time.UTC), want: "K-Drama"},
		{name: "29 minutes stays in slot", now: time.Date(2026, 3, 1, 1, 29, 59, 0, time.UTC), want: "K-Movie"},
		{name: "wraps around", now: time.Date(2026, 3, 1, 2, 30, 0, 0, time.UTC), want: "K-Pop"},
		{name: "last slot of day", now: time.Date(2026, 3, 1, 23, 45, 0, 0, time.UTC), want: "K-Movie"},
		{
			name: "non-UTC input uses UTC clock",
			now:  time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("KST", 9*60*60)),
			want: "K-Drama",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectCategory(tt.now, testOrder)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectCategory_Empty(t *testing.T) {
	_, err := SelectCategory(time.Now(), nil)
	require.ErrorIs(t, err, ErrNoCategories)
}

func TestSlotIndex(t *testing.T) {
	assert.Equal(t, 0, SlotIndex(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 47, SlotIndex(time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)))
}

func TestNextRun(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 12, 0, 0, time.UTC)

	next, err := NextRun("0,30 * * * *", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), next)

	_, err = NextRun("bogus", now)
	require.Error(t, err)
}
