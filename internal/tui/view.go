package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"passcan/internal/model"
	"passcan/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	detailStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63"))

	alertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cleanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

// columns splits the terminal width between path, status and labels.
func columns(width int) []table.Column {
	const statusW, secretsW = 10, 36
	pathW := width - statusW - secretsW - 8
	if pathW < 20 {
		pathW = 20
	}
	return []table.Column{
		{Title: "File Path", Width: pathW},
		{Title: "Status", Width: statusW},
		{Title: "Secrets Found", Width: secretsW},
	}
}

// resultRow renders one result as a table row, with the path relative to root.
func resultRow(root string, r model.ScanResult) table.Row {
	path := r.Path
	if rel, err := filepath.Rel(root, r.Path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	return table.Row{path, model.StatusLabel(r.Status), report.SecretsCell(r)}
}

func statusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusAlert:
		return alertStyle
	case model.StatusError:
		return errorStyle
	}
	return cleanStyle
}

func (m AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Passcan"))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(m.Root))
	b.WriteString("\n\n")

	if m.Loading {
		percent := 0.0
		if m.Total > 0 {
			percent = float64(m.Done) / float64(m.Total)
		}
		fmt.Fprintf(&b, "  %s Scanning for secrets...\n\n", m.Spinner.View())
		fmt.Fprintf(&b, "  %s %d/%d files\n", m.Bar.ViewAs(percent), m.Done, m.Total)
		return b.String()
	}

	b.WriteString(m.Results.View())
	b.WriteString("\n")

	if r, ok := m.Selected(); ok {
		detail := statusStyle(r.Status).Render(model.StatusLabel(r.Status)) + "  " + r.Path
		switch {
		case r.Status == model.StatusError && r.Err != nil:
			detail += "\n" + errorStyle.Render(r.Err.Error())
		case len(r.Secrets) > 0:
			detail += "\n" + strings.Join(r.Secrets, ", ")
		}
		b.WriteString(detailStyle.Render(detail))
		b.WriteString("\n")
	} else if m.AlertsOnly {
		b.WriteString(cleanStyle.Render("  No files with secrets."))
		b.WriteString("\n")
	}

	s := m.Report.Summary
	fmt.Fprintf(&b, "%d scanned · %s · %s · %d unreadable · %s\n",
		s.FilesScanned,
		alertStyle.Render(fmt.Sprintf("%d with secrets", s.FilesWithSecrets)),
		fmt.Sprintf("%d secrets", s.TotalSecrets),
		s.Errors,
		report.FormatElapsed(s.Elapsed))

	filter := "all files"
	if m.AlertsOnly {
		filter = "alerts only"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("↑/↓ move · %s %s (%s) · %s %s · %s %s",
		keys.Filter.Help().Key, keys.Filter.Help().Desc, filter,
		keys.Rescan.Help().Key, keys.Rescan.Help().Desc,
		keys.Quit.Help().Key, keys.Quit.Help().Desc)))
	return b.String()
}
