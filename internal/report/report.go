// Package report assembles the per-category rollup table and the parallel
// arrays a sunburst renderer needs, and writes them out.
package report

import (
	"fmt"
	"time"

	"survey-insights-go/internal/hierarchy"
	"survey-insights-go/internal/status"
	"survey-insights-go/internal/types"
)

// TableHeader is the column order of the category table.
var TableHeader = []string{"Category", "Agree Percentage", "Disagree Percentage", "Unanswered Percentage"}

// TableRow is one line of the category table.
type TableRow struct {
	Category      string `json:"category"`
	AgreePct      int    `json:"agree_pct"`
	DisagreePct   int    `json:"disagree_pct"`
	UnansweredPct int    `json:"unanswered_pct"`
	Depth         int    `json:"depth"`
}

// ChartSpec holds index-aligned arrays for a hierarchical chart. IDs is set only
// when node identity differs from the display label (path key mode); Parents
// then refers to IDs rather than Labels.
type ChartSpec struct {
	IDs     []string `json:"ids,omitempty"`
	Labels  []string `json:"labels"`
	Parents []string `json:"parents"`
	Colors  []string `json:"colors"`
}

// Report is the full output of one run.
type Report struct {
	RunID       string                     `json:"run_id,omitempty"`
	GeneratedAt time.Time                  `json:"generated_at"`
	KeyMode     hierarchy.KeyMode          `json:"key_mode"`
	Rows        []TableRow                 `json:"rows"`
	Chart       ChartSpec                  `json:"chart"`
	Stats       []types.CategoryStats      `json:"stats"`
	Summary     status.Summary             `json:"summary"`
	Warnings    []types.DataQualityWarning `json:"warnings,omitempty"`
}

// ColorToken maps a status to the color name handed to the renderer.
func ColorToken(s types.Status) string {
	switch s {
	case types.Green, types.Red, types.Grey, types.Orange:
		return string(s)
	}
	return string(types.Orange)
}

// Assemble joins hierarchy order with classified stats. stats must be aligned
// with h.Nodes, as produced by aggregator.Aggregate.
func Assemble(h hierarchy.Hierarchy, stats []types.CategoryStats) (Report, error) {
	if len(stats) != len(h.Nodes) {
		return Report{}, fmt.Errorf("assemble: %d stats for %d nodes", len(stats), len(h.Nodes))
	}
	rep := Report{
		GeneratedAt: time.Now().UTC(),
		KeyMode:     h.Mode,
		Rows:        make([]TableRow, len(stats)),
		Stats:       stats,
		Summary:     status.Summarize(stats),
		Warnings:    h.Warnings,
		Chart: ChartSpec{
			Labels:  make([]string, len(stats)),
			Parents: make([]string, len(stats)),
			Colors:  make([]string, len(stats)),
		},
	}
	if h.Mode == hierarchy.KeyByPath {
		rep.Chart.IDs = make([]string, len(stats))
	}
	for i, n := range h.Nodes {
		s := stats[i]
		if s.Category != n.ID {
			return Report{}, fmt.Errorf("assemble: stats[%d] is %q, node is %q", i, s.Category, n.ID)
		}
		rep.Rows[i] = TableRow{
			Category:      n.Name(),
			AgreePct:      s.AgreePct,
			DisagreePct:   s.DisagreePct,
			UnansweredPct: s.UnansweredPct,
			Depth:         n.Depth,
		}
		rep.Chart.Labels[i] = n.ID
		if rep.Chart.IDs != nil {
			rep.Chart.IDs[i] = n.ID
			rep.Chart.Labels[i] = n.Label
		}
		rep.Chart.Parents[i] = n.Parent
		rep.Chart.Colors[i] = ColorToken(s.Status)
	}
	return rep, nil
}
