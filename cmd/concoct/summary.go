package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/3rg0n/concoct/internal/report"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// formatReportSummary renders one PASS/FAIL line per stage, the way the
// teacher's FormatResults summarized a ValidationResult slice, styled
// with lipgloss instead of FormatResults' plain string concatenation.
func formatReportSummary(r *report.Report) string {
	var b strings.Builder
	for _, part := range r.Parts {
		label := string(part.Source)
		if part.Succeeded() {
			fmt.Fprintf(&b, "%s %s\n", passStyle.Render("PASS"), label)
		} else {
			fmt.Fprintf(&b, "%s %s (exit %d)\n", failStyle.Render("FAIL"), label, part.ReturnCode)
		}
	}
	return b.String()
}
