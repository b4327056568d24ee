package db

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUUIDRoundTrip(t *testing.T) {
	id := "6f1c2d3e-4b5a-4c6d-8e7f-0123456789ab"

	assert.Equal(t, id, fromUUID(toUUID(id)))
	assert.False(t, toUUID("not-a-uuid").Valid)
	assert.Empty(t, fromUUID(toUUID("")))
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "뉴진스", want: "뉴진스"},
		{in: "100%", want: `100\%`},
		{in: "a_b", want: `a\_b`},
		{in: `c:\path`, want: `c:\\path`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "", SanitizeUTF8(""))
	assert.Equal(t, "케이팝", SanitizeUTF8("케이팝"))
	assert.Equal(t, "ab", SanitizeUTF8("a\xffb"))
}

func TestNullableHelpers(t *testing.T) {
	assert.False(t, toText("").Valid)
	assert.True(t, toText("x").Valid)
	assert.False(t, toTimestamptz(time.Time{}).Valid)
	assert.True(t, fromTimestamptz(toTimestamptz(time.Time{})).IsZero())
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, int32(2147483647), safeIntToInt32(1<<40))
}

func TestLiveItemQueriesOrderByRank(t *testing.T) {
	assert.True(t, strings.HasSuffix(listLiveItemsQuery, "ORDER BY rank = 0, rank, score DESC, created_at DESC"))
	assert.True(t, strings.HasSuffix(listAllLiveItemsQuery, "ORDER BY category, rank = 0, rank, score DESC, created_at DESC"))
}
