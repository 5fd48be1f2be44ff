package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	// titleStyle for bold summary headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// dimStyle for muted labels
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for clean results
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for failures and issues
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for the run summary box
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// printSummary renders the end-of-run box.
func printSummary(w io.Writer, title string, lines []string) {
	content := titleStyle.Render(title)
	for _, ln := range lines {
		content += "\n" + ln
	}
	fmt.Fprintln(w, boxStyle.Render(content))
}

func kv(label, value string) string {
	return dimStyle.Render(label+":") + " " + value
}

func kvInt(label string, n int) string {
	return kv(label, fmt.Sprintf("%d", n))
}

// printFailures lists failed files below the summary box.
func printFailures(w io.Writer, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%d failed:", len(items))))
	for _, it := range items {
		fmt.Fprintf(w, "  %s %s\n", errorStyle.Render("✗"), it)
	}
}
