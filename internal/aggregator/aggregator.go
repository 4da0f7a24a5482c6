package aggregator

import (
	"math"

	"survey-insights-go/internal/hierarchy"
	"survey-insights-go/internal/types"
)

// Counts is the running tally for one category key.
type Counts struct {
	Agree       int `json:"agree"`
	Disagree    int `json:"disagree"`
	NotAnswered int `json:"not_answered"`
	Other       int `json:"other"`
}

func (c Counts) Total() int {
	return c.Agree + c.Disagree + c.NotAnswered + c.Other
}

// Index tallies answers by category in a single pass.
func Index(answers []types.NormalizedAnswer) map[string]Counts {
	idx := map[string]Counts{}
	for _, a := range answers {
		c := idx[a.Category]
		switch a.Sentiment {
		case types.Agree:
			c.Agree++
		case types.Disagree:
			c.Disagree++
		case types.NotAnswered:
			c.NotAnswered++
		default:
			c.Other++
		}
		idx[a.Category] = c
	}
	return idx
}

// Percent returns round-half-to-even of 100*count/total. total == 0 yields 0.
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(count*100) / float64(total)))
}

// Aggregate computes one CategoryStats per hierarchy node, in hierarchy order.
// Other answers count toward the denominator only. A node with no answers gets
// zero percentages and NoData. Status is left for the classifier.
func Aggregate(h hierarchy.Hierarchy, answers []types.NormalizedAnswer) []types.CategoryStats {
	idx := Index(answers)
	out := make([]types.CategoryStats, 0, len(h.Nodes))
	for _, n := range h.Nodes {
		c := idx[n.ID]
		total := c.Total()
		out = append(out, types.CategoryStats{
			Category:      n.ID,
			Label:         n.Label,
			Path:          n.Path,
			Total:         total,
			AgreePct:      Percent(c.Agree, total),
			DisagreePct:   Percent(c.Disagree, total),
			UnansweredPct: Percent(c.NotAnswered, total),
			NoData:        total == 0,
		})
	}
	return out
}
