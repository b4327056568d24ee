package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON returns the first complete JSON array or object embedded in text.
// Markdown fences and surrounding prose are skipped. When no valid value is
// found the text is returned unchanged so the caller's decode error is explicit.
func extractJSON(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}

		var raw json.RawMessage

		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err == nil {
			return string(raw)
		}
	}

	return text
}

type rankingsEnvelope struct {
	Rankings []RankedKeyword `json:"rankings"`
}

// parseRankings accepts {"rankings":[...]} or a bare array.
func parseRankings(content string, limit int) ([]RankedKeyword, error) {
	payload := extractJSON(content)

	var rankings []RankedKeyword

	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &rankings); err != nil {
			return nil, fmt.Errorf(errParseResponseFmt, err)
		}
	} else {
		var env rankingsEnvelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			return nil, fmt.Errorf(errParseResponseFmt, err)
		}

		rankings = env.Rankings
	}

	out := make([]RankedKeyword, 0, len(rankings))

	for _, r := range rankings {
		r.Keyword = strings.TrimSpace(r.Keyword)
		if r.Keyword == "" {
			continue
		}

		r.Score = clampScore(r.Score)
		out = append(out, r)
	}

	if len(out) == 0 {
		return nil, ErrEmptyRanking
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func parseSummary(content string) (Summary, error) {
	var s Summary

	if err := json.Unmarshal([]byte(extractJSON(content)), &s); err != nil {
		return Summary{}, fmt.Errorf(errParseResponseFmt, err)
	}

	s.Title = strings.TrimSpace(s.Title)
	s.Summary = strings.TrimSpace(s.Summary)

	if s.Title == "" || s.Summary == "" {
		return Summary{}, ErrIncompleteSummary
	}

	if s.Score != nil {
		v := clampScore(*s.Score)
		s.Score = &v
	}

	return s, nil
}

func clampScore(v float32) float32 {
	switch {
	case v < scoreMin:
		return scoreMin
	case v > scoreMax:
		return scoreMax
	default:
		return v
	}
}
