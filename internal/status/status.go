package status

import (
	"fmt"
	"sort"

	"survey-insights-go/internal/types"
)

const (
	greenAgreeMin     = 80
	redDisagreeMin    = 20
	greyUnansweredMin = 80
)

// Classify applies the rules in order; the first match wins.
func Classify(agreePct, disagreePct, unansweredPct int) types.Status {
	switch {
	case agreePct >= greenAgreeMin:
		return types.Green
	case disagreePct >= redDisagreeMin:
		return types.Red
	case unansweredPct >= greyUnansweredMin:
		return types.Grey
	default:
		return types.Orange
	}
}

// Apply returns a copy of stats with Status filled in.
func Apply(stats []types.CategoryStats) []types.CategoryStats {
	out := make([]types.CategoryStats, len(stats))
	for i, s := range stats {
		s.Status = Classify(s.AgreePct, s.DisagreePct, s.UnansweredPct)
		out[i] = s
	}
	return out
}

type Summary struct {
	Counts  map[types.Status]int `json:"counts"`
	Worst   []string             `json:"worst"`
	Insight string               `json:"insight"`
}

// Summarize counts categories per status and lists Red categories by
// descending disagree percentage, ties kept in hierarchy order.
func Summarize(stats []types.CategoryStats) Summary {
	counts := map[types.Status]int{types.Green: 0, types.Red: 0, types.Grey: 0, types.Orange: 0}
	var red []types.CategoryStats
	for _, s := range stats {
		counts[s.Status]++
		if s.Status == types.Red {
			red = append(red, s)
		}
	}
	sort.SliceStable(red, func(i, j int) bool { return red[i].DisagreePct > red[j].DisagreePct })
	worst := make([]string, 0, len(red))
	for _, s := range red {
		worst = append(worst, s.Name())
	}

	insight := "No category reaches the disagree threshold"
	if len(red) > 0 {
		insight = fmt.Sprintf("Highest disagreement in %s (%d%%)", red[0].Name(), red[0].DisagreePct)
	}
	return Summary{Counts: counts, Worst: worst, Insight: insight}
}
