package dataset

import "survey-insights-go/internal/types"

type CleanReport struct {
	Malformed  int `json:"malformed"`
	Duplicates int `json:"duplicates"`
}

// CleanMapping drops entries with an empty field, then exact duplicates, then
// rewrites level-2 labels found in aliases (from -> to). Surviving entries
// keep their order.
func CleanMapping(entries []types.MappingEntry, aliases map[string]string) ([]types.MappingEntry, CleanReport) {
	var rep CleanReport
	seen := map[types.MappingEntry]bool{}
	out := make([]types.MappingEntry, 0, len(entries))
	for _, e := range entries {
		if e.QuestionText == "" || !e.Complete() {
			rep.Malformed++
			continue
		}
		if seen[e] {
			rep.Duplicates++
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	for i := range out {
		if alias, ok := aliases[out[i].Level2]; ok {
			out[i].Level2 = alias
		}
	}
	return out, rep
}

type JoinReport struct {
	Unmatched          int      `json:"unmatched"`
	UnmatchedQuestions []string `json:"unmatched_questions,omitempty"`
}

// Join left-joins survey rows to mapping entries on exact question text. A row
// matching several entries yields one MappedResponse per entry in mapping
// order; a row matching none yields one with empty categories.
func Join(survey []types.SurveyRow, mapping []types.MappingEntry) ([]types.MappedResponse, JoinReport) {
	byQuestion := map[string][]types.Categories{}
	for _, m := range mapping {
		byQuestion[m.QuestionText] = append(byQuestion[m.QuestionText], m.Categories)
	}

	var rep JoinReport
	reported := map[string]bool{}
	out := make([]types.MappedResponse, 0, len(survey))
	for _, s := range survey {
		cats, ok := byQuestion[s.QuestionText]
		if !ok {
			rep.Unmatched++
			if !reported[s.QuestionText] {
				reported[s.QuestionText] = true
				rep.UnmatchedQuestions = append(rep.UnmatchedQuestions, s.QuestionText)
			}
			out = append(out, types.MappedResponse{RawAnswer: s.RawAnswer})
			continue
		}
		for _, c := range cats {
			out = append(out, types.MappedResponse{RawAnswer: s.RawAnswer, Categories: c})
		}
	}
	return out, rep
}

// CategoryRows extracts the category triples of mapped responses in order.
func CategoryRows(rows []types.MappedResponse) []types.Categories {
	out := make([]types.Categories, len(rows))
	for i, r := range rows {
		out[i] = r.Categories
	}
	return out
}

// MappingCategoryRows extracts the category triples of mapping entries in order.
func MappingCategoryRows(entries []types.MappingEntry) []types.Categories {
	out := make([]types.Categories, len(entries))
	for i, e := range entries {
		out[i] = e.Categories
	}
	return out
}
