package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-stockflow/pkg/constraints"
	"github.com/dd0wney/cluso-stockflow/pkg/issues"
	"github.com/dd0wney/cluso-stockflow/pkg/projectstore"
	"github.com/dd0wney/cluso-stockflow/pkg/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F5FAF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// renderGrid lays out rows under a header, padding each column to its widest
// cell.
func renderGrid(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = style.Width(widths[i] + 2).Render(c)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	fmt.Fprintln(w, line(header, headerStyle))
	for _, row := range rows {
		fmt.Fprintln(w, line(row, cellStyle))
	}
}

func severityStyle(s constraints.Severity) lipgloss.Style {
	switch s {
	case constraints.Error:
		return errorStyle
	case constraints.Warning:
		return warnStyle
	default:
		return dimStyle
	}
}

func renderViolations(w io.Writer, result *constraints.ValidationResult) {
	if result.Valid {
		fmt.Fprintln(w, successStyle.Render("no problems found"))
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d problem(s)", len(result.Violations))))
	rows := make([][]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		subject := v.NodeKey
		if subject == "" {
			subject = v.LinkKey
		}
		rows = append(rows, []string{
			severityStyle(v.Severity).Render(v.Severity.String()),
			v.Type.String(),
			subject,
			v.Message,
		})
	}
	renderGrid(w, []string{"SEVERITY", "TYPE", "SUBJECT", "MESSAGE"}, rows)
}

func renderIssues(w io.Writer, found issues.List) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d issue(s)", len(found))))
	rows := make([][]string, 0, len(found))
	for _, i := range found {
		style := errorStyle
		if !i.Blocking() {
			style = warnStyle
		}
		rows = append(rows, []string{
			style.Render(i.Class().String()),
			i.Kind.String(),
			i.Subject,
			strings.Join(i.Names, ", "),
			i.Message,
		})
	}
	renderGrid(w, []string{"CLASS", "KIND", "SUBJECT", "NAMES", "MESSAGE"}, rows)
	if advisories := found.OfClass(issues.Advisory); len(advisories) == len(found) {
		fmt.Fprintln(w, dimStyle.Render("rerun with --allow-high-step-count to confirm"))
	}
}

func renderTable(w io.Writer, t session.EquationTable) {
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, dimStyle.Render("the diagram has no stocks, variables or flows"))
		return
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		direction := ""
		if r.HasDirection() {
			direction = "uniflow"
			if r.Biflow {
				direction = "biflow"
			}
		}
		rows = append(rows, []string{string(r.Kind), r.Name, r.Equation, direction})
	}
	renderGrid(w, []string{"KIND", "NAME", "EQUATION", "DIRECTION"}, rows)
}

func renderStoreList(w io.Writer, infos []projectstore.Info) {
	if len(infos) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no projects"))
		return
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		modified := ""
		if !info.Modified.IsZero() {
			modified = info.Modified.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{info.Name, fmt.Sprintf("%d", info.Size), modified})
	}
	renderGrid(w, []string{"NAME", "BYTES", "MODIFIED"}, rows)
}
