package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixhoffmnn/latex-templates/internal/model"
	"github.com/felixhoffmnn/latex-templates/internal/workflow"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	refStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	stateArchive = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	stateFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	stateWaiting = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	stateSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

func styleForState(s workflow.State) lipgloss.Style {
	switch s {
	case workflow.Archived:
		return stateArchive
	case workflow.Failed:
		return stateFailed
	case workflow.Skipped:
		return stateSkipped
	default:
		return stateWaiting
	}
}

// printAddressees writes one "name: reference" line per registry entry.
func printAddressees(w io.Writer, addressees []model.Addressee) {
	width := 0
	for _, a := range addressees {
		width = max(width, lipgloss.Width(a.Name()))
	}
	name := lipgloss.NewStyle().Width(width)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d addressees", len(addressees))))
	for _, a := range addressees {
		fmt.Fprintf(w, "%s: %s\n", name.Render(a.Name()), refStyle.Render(strconv.Itoa(a.CustomerID)))
	}
}

// printReport writes one line per record and a totals line.
func printReport(w io.Writer, r *workflow.Report) {
	for _, o := range r.Outcomes {
		number := o.Number
		if number == "" {
			number = "-"
		}
		line := fmt.Sprintf("%3d  %-8s  customer %-4d  %s", o.Index+1, number, o.CustomerID, styleForState(o.State).Render(string(o.State)))
		if o.Err != nil {
			line += "  " + o.Err.Error()
		} else if o.Artifact != "" {
			line += "  " + refStyle.Render(o.Artifact)
		}
		fmt.Fprintln(w, line)
	}

	var parts []string
	for _, s := range []workflow.State{workflow.Archived, workflow.Unconfirmed, workflow.Skipped, workflow.Failed} {
		if n := r.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(s))))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "no records")
	}
	fmt.Fprintln(w, headerStyle.Render(strings.Join(parts, ", ")))
}
