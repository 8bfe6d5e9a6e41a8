package main

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/rigup/pkg/pipeline"
	"github.com/arthur-debert/rigup/pkg/style"
	"github.com/arthur-debert/rigup/pkg/ui"
)

// renderSummary formats the end-of-run summary: one line per executed
// step with a status badge, then the accumulated warnings.
func renderSummary(result pipeline.RunResult, format ui.Format) string {
	styled := format == ui.FormatTerminal
	var b strings.Builder

	b.WriteString("\n")
	if styled {
		b.WriteString(style.TitleStyle.Render(MsgSummaryTitle))
	} else {
		b.WriteString(MsgSummaryTitle)
	}
	b.WriteString("\n")

	nameWidth := 0
	for _, sr := range result.Steps {
		if len(sr.Name) > nameWidth {
			nameWidth = len(sr.Name)
		}
	}

	for _, sr := range result.Steps {
		badge := style.StatusBadge(stepBadge(sr), styled)
		line := fmt.Sprintf("  %-*s  %s", nameWidth, sr.Name, badge)
		if sr.Skipped && sr.Message != "" {
			detail := fmt.Sprintf("  (%s)", sr.Message)
			if styled {
				detail = style.MutedStyle.Render(detail)
			}
			line += detail
		}
		b.WriteString(line + "\n")
	}

	if len(result.Warnings) > 0 {
		b.WriteString("\n")
		if styled {
			b.WriteString(style.WarningStyle.Render(MsgWarningsHeader))
		} else {
			b.WriteString(MsgWarningsHeader)
		}
		b.WriteString("\n")
		for _, warning := range result.Warnings {
			b.WriteString("  - " + warning + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case result.Aborted && styled:
		b.WriteString(style.ErrorStyle.Render(MsgSummaryAborted))
	case result.Aborted:
		b.WriteString(MsgSummaryAborted)
	case styled:
		b.WriteString(style.SuccessStyle.Render(MsgSummaryComplete))
	default:
		b.WriteString(MsgSummaryComplete)
	}
	b.WriteString("\n")
	return b.String()
}

func stepBadge(sr pipeline.StepResult) style.Status {
	switch {
	case sr.Status == pipeline.StatusFailed:
		return style.StatusFailed
	case sr.Status == pipeline.StatusWarned:
		return style.StatusWarned
	case sr.Skipped:
		return style.StatusSkipped
	default:
		return style.StatusSuccess
	}
}
