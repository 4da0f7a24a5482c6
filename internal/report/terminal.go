package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"survey-insights-go/internal/types"
)

var (
	colorHeader = lipgloss.Color("#64b5f6")
	colorMuted  = lipgloss.Color("#888888")

	statusColors = map[types.Status]lipgloss.Color{
		types.Green:  lipgloss.Color("#66bb6a"),
		types.Red:    lipgloss.Color("#ef5350"),
		types.Grey:   lipgloss.Color("#9e9e9e"),
		types.Orange: lipgloss.Color("#ffa726"),
	}
)

func pad(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// RenderTerminal formats the report as an aligned table with a status column
// and a one-line summary. color=false yields plain text.
func RenderTerminal(rep Report, color bool) string {
	header := lipgloss.NewStyle()
	muted := lipgloss.NewStyle()
	if color {
		header = header.Bold(true).Foreground(colorHeader)
		muted = muted.Foreground(colorMuted)
	}

	headers := append(append([]string{}, TableHeader...), "Status")
	cells := make([][]string, len(rep.Rows))
	for i, r := range rep.Rows {
		st := types.Orange
		noData := false
		if i < len(rep.Stats) {
			st = rep.Stats[i].Status
			noData = rep.Stats[i].NoData
		}
		label := string(st)
		if noData {
			label += " (no data)"
		}
		if color {
			label = lipgloss.NewStyle().Foreground(statusColors[st]).Render(label)
		}
		cells[i] = []string{
			strings.Repeat("  ", max(r.Depth-1, 0)) + r.Category,
			fmt.Sprintf("%d%%", r.AgreePct),
			fmt.Sprintf("%d%%", r.DisagreePct),
			fmt.Sprintf("%d%%", r.UnansweredPct),
			label,
		}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if n := lipgloss.Width(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(header.Render(pad(h, widths[i])))
	}
	sb.WriteString("\n")
	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(muted.Render(strings.Repeat("─", w)))
	}
	sb.WriteString("\n")
	for _, row := range cells {
		for i, c := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(pad(c, widths[i]))
		}
		sb.WriteString("\n")
	}

	s := rep.Summary
	sb.WriteString("\n")
	sb.WriteString(muted.Render(fmt.Sprintf("green %d  red %d  grey %d  orange %d",
		s.Counts[types.Green], s.Counts[types.Red], s.Counts[types.Grey], s.Counts[types.Orange])))
	sb.WriteString("\n")
	if s.Insight != "" {
		sb.WriteString(s.Insight)
		sb.WriteString("\n")
	}
	return sb.String()
}
