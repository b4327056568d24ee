package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced_rankings_envelope",
			input: "```json\n{\"rankings\":[{\"rank\":1,\"keyword\":\"뉴진스\"},{\"rank\":2,\"keyword\":\"BTS 진\"}]}\n```",
			want:  `{"rankings":[{"rank":1,"keyword":"뉴진스"},{"rank":2,"keyword":"BTS 진"}]}`,
		},
		{
			name:  "bare_ranking_array",
			input: `[{"rank":1,"keyword":"aespa","meta_info":"컴백"}]`,
			want:  `[{"rank":1,"keyword":"aespa","meta_info":"컴백"}]`,
		},
		{
			name:  "ranking_array_after_prose",
			input: `오늘의 키워드입니다: [{"rank":1,"keyword":"아이유"}] 참고하세요.`,
			want:  `[{"rank":1,"keyword":"아이유"}]`,
		},
		{
			name:  "summary_with_score",
			input: "Summary:\n{\"title\":\"뉴진스 컴백\",\"summary\":\"새 앨범 발표\",\"score\":8.5}",
			want:  `{"title":"뉴진스 컴백","summary":"새 앨범 발표","score":8.5}`,
		},
		{
			name:  "summary_without_score",
			input: "```\n{\"title\":\"BTS 진 전역\",\"summary\":\"팬미팅 예고\"}\n```",
			want:  `{"title":"BTS 진 전역","summary":"팬미팅 예고"}`,
		},
		{
			name:  "brackets_inside_strings",
			input: `{"title":"[단독] 드라마 캐스팅","summary":"{미정}"}`,
			want:  `{"title":"[단독] 드라마 캐스팅","summary":"{미정}"}`,
		},
		{
			name:  "skips_invalid_bracket_before_valid_value",
			input: `[1위 뉴진스 {"rankings":[{"rank":1,"keyword":"뉴진스"}]}`,
			want:  `{"rankings":[{"rank":1,"keyword":"뉴진스"}]}`,
		},
		{
			name:  "skips_broken_object_before_array",
			input: `{ keyword: aespa } [{"rank":1,"keyword":"aespa"}]`,
			want:  `[{"rank":1,"keyword":"aespa"}]`,
		},
		{
			name:  "first_valid_value_wins",
			input: `{"title":"a","summary":"b"} {"title":"c","summary":"d"}`,
			want:  `{"title":"a","summary":"b"}`,
		},
		{
			name:  "no_json_returns_input",
			input: "요약할 기사가 없습니다",
			want:  "요약할 기사가 없습니다",
		},
		{
			name:  "only_broken_brackets_returns_input",
			input: `{"rankings": [`,
			want:  `{"rankings": [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}
