package style

import (
	"github.com/pterm/pterm"
)

// Status types for steps in the run summary
type Status string

const (
	StatusSuccess Status = "success" // Step succeeded
	StatusSkipped Status = "skipped" // Step already satisfied
	StatusWarned  Status = "warned"  // Step degraded but run continued
	StatusFailed  Status = "failed"  // Step failed
)

// StatusStyle returns the appropriate pterm style for a status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusSuccess:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case StatusSkipped:
		return pterm.NewStyle(pterm.FgCyan)
	case StatusWarned:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	case StatusFailed:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// StatusBadge renders a fixed-width badge like " success " for the
// summary's status column.
func StatusBadge(status Status, styled bool) string {
	text := " " + string(status) + " "
	if !styled {
		return text
	}
	return StatusStyle(status).Sprint(text)
}
