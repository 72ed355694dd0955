package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"texshrink/internal/processor"
)

type SummaryRow struct {
	Label string
	Value string
}

// OutcomeRows lays out the run totals for RenderSummary.
func OutcomeRows(outcome processor.RunOutcome) []SummaryRow {
	return []SummaryRow{
		{Label: "Changed", Value: fmt.Sprintf("%d", outcome.Changed)},
		{Label: "Skipped", Value: fmt.Sprintf("%d", outcome.Skipped)},
		{Label: "Errors", Value: fmt.Sprintf("%d", outcome.Errored)},
	}
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", summaryLabelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// RenderOutcome styles a per-file message by its status.
func RenderOutcome(o processor.Outcome) string {
	switch o.Status {
	case processor.StatusErrored:
		return errorStyle.Render(o.Message)
	case processor.StatusChanged:
		return changedStyle.Render(o.Message)
	default:
		return dimStyle.Render(o.Message)
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	summaryLabelStyle = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	valueStyle        = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	changedStyle      = lipgloss.NewStyle().Foreground(ColorInk)
	errorStyle        = lipgloss.NewStyle().Foreground(ColorError)
)
