package normalizer

import (
	"survey-insights-go/internal/hierarchy"
	"survey-insights-go/internal/types"
)

// six raw answers reduce to three buckets; anything else is Other
var buckets = map[string]types.Sentiment{
	"Strongly Agree":    types.Agree,
	"Agree":             types.Agree,
	"Strongly Disagree": types.Disagree,
	"Disagree":          types.Disagree,
	"Prefer not to say": types.NotAnswered,
	"Not Answered":      types.NotAnswered,
}

// Normalize maps a raw answer to its sentiment bucket. Matching is exact.
func Normalize(raw string) types.Sentiment {
	if s, ok := buckets[raw]; ok {
		return s
	}
	return types.Other
}

// Expand emits one NormalizedAnswer per depth for every mapped response, keyed
// the same way the hierarchy keys its nodes. Responses without a complete
// mapping contribute nothing. Counts are not rolled up from children to parents.
func Expand(rows []types.MappedResponse, mode hierarchy.KeyMode) []types.NormalizedAnswer {
	out := make([]types.NormalizedAnswer, 0, len(rows)*types.Depths)
	for _, r := range rows {
		if !r.Complete() {
			continue
		}
		s := Normalize(r.RawAnswer)
		for d := 1; d <= types.Depths; d++ {
			out = append(out, types.NormalizedAnswer{
				Sentiment: s,
				Raw:       r.RawAnswer,
				Category:  mode.Key(r.Categories, d),
			})
		}
	}
	return out
}
