package dataset

import (
	"sort"

	"survey-insights-go/internal/logger"
	"survey-insights-go/internal/types"
)

type AnswerCount struct {
	Answer string `json:"answer"`
	Count  int    `json:"count"`
}

type DatasetSummary struct {
	TotalResponses    int           `json:"total_responses"`
	DistinctQuestions int           `json:"distinct_questions"`
	MappingEntries    int           `json:"mapping_entries"`
	Answers           []AnswerCount `json:"answers"`
}

// Summarize profiles the loaded survey rows. Answers are ordered by count
// descending, then by answer text.
func Summarize(survey []types.SurveyRow, mapping []types.MappingEntry) DatasetSummary {
	questions := map[string]struct{}{}
	byAnswer := map[string]int{}
	for _, r := range survey {
		questions[r.QuestionText] = struct{}{}
		byAnswer[r.RawAnswer]++
	}
	answers := make([]AnswerCount, 0, len(byAnswer))
	for a, c := range byAnswer {
		answers = append(answers, AnswerCount{Answer: a, Count: c})
	}
	sort.Slice(answers, func(i, j int) bool {
		if answers[i].Count != answers[j].Count {
			return answers[i].Count > answers[j].Count
		}
		return answers[i].Answer < answers[j].Answer
	})

	ds := DatasetSummary{
		TotalResponses:    len(survey),
		DistinctQuestions: len(questions),
		MappingEntries:    len(mapping),
		Answers:           answers,
	}
	logger.New().WithField("component", "dataset.summary").WithFields(map[string]interface{}{
		"total_responses":    ds.TotalResponses,
		"distinct_questions": ds.DistinctQuestions,
		"answer_values":      len(ds.Answers),
	}).Debug("dataset summarization complete")
	return ds
}
