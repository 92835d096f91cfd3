// Package report renders scan results for the console and as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"passcan/internal/model"
)

const banner = ` ____
|  _ \ __ _ ___ ___  ___ __ _ _ __
| |_) / _` + "`" + ` / __/ __|/ __/ _` + "`" + ` | '_ \
|  __/ (_| \__ \__ \ (_| (_| | | | |
|_|   \__,_|___/___/\___\__,_|_| |_|`

// ProjectURL is printed in the report footer.
const ProjectURL = "https://github.com/max5010cs/passcan"

// Printer writes styled console output. Styles come from a renderer bound to
// the destination, so colour is dropped when it is not a terminal.
type Printer struct {
	w io.Writer

	banner    lipgloss.Style
	bold      lipgloss.Style
	heading   lipgloss.Style
	path      lipgloss.Style
	clean     lipgloss.Style
	alert     lipgloss.Style
	errStyle  lipgloss.Style
	secrets   lipgloss.Style
	elapsed   lipgloss.Style
	border    lipgloss.Style
	highlight lipgloss.Style
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:         w,
		banner:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		bold:      r.NewStyle().Bold(true),
		heading:   r.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12")),
		path:      r.NewStyle().Foreground(lipgloss.Color("6")),
		clean:     r.NewStyle().Foreground(lipgloss.Color("2")),
		alert:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		errStyle:  r.NewStyle().Foreground(lipgloss.Color("3")),
		secrets:   r.NewStyle().Foreground(lipgloss.Color("3")),
		elapsed:   r.NewStyle().Foreground(lipgloss.Color("5")),
		border:    r.NewStyle().Foreground(lipgloss.Color("63")),
		highlight: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Banner prints the program banner and the directory about to be scanned.
func (p *Printer) Banner(root string) {
	fmt.Fprintln(p.w, p.banner.Render(banner))
	fmt.Fprintf(p.w, "%s %s\n\n",
		p.bold.Render("Passcan"),
		p.highlight.Render("Scan your codebase for secrets before pushing."))
	fmt.Fprintf(p.w, "%s %s\n\n", p.heading.UnsetUnderline().Render(model.IconScan+" Scanning directory:"), p.bold.Render(root))
}

// WatchBanner prints the watch-mode header.
func (p *Printer) WatchBanner(root string) {
	fmt.Fprintln(p.w, p.banner.Render(banner))
	fmt.Fprintf(p.w, "%s %s\n\n",
		p.bold.Render("Passcan Watch Mode"),
		p.highlight.Render("Watching for file changes..."))
	fmt.Fprintf(p.w, "%s %s\n\n", p.heading.UnsetUnderline().Render(model.IconScan+" Watching directory:"), p.bold.Render(root))
}

// Rescan announces a change-triggered rescan.
func (p *Printer) Rescan() {
	fmt.Fprintln(p.w, p.highlight.Render(model.IconWatch+" Change detected, rescanning..."))
}

// Verbose prints one scanned file path.
func (p *Printer) Verbose(path string) {
	fmt.Fprintf(p.w, "%s %s\n", model.IconFile, path)
}

// StatusCell renders a status label in its colour. Error is styled apart
// from Clean so a read failure is never mistaken for "no secrets".
func (p *Printer) StatusCell(s model.Status) string {
	label := model.StatusLabel(s)
	switch s {
	case model.StatusAlert:
		return p.alert.Render(label)
	case model.StatusError:
		return p.errStyle.Render(label)
	default:
		return p.clean.Render(label)
	}
}

// SecretsCell renders the labels column; Error rows show the read failure.
func SecretsCell(r model.ScanResult) string {
	switch {
	case r.Status == model.StatusError && r.Err != nil:
		return "unreadable: " + r.Err.Error()
	case len(r.Secrets) == 0:
		return "-"
	default:
		return strings.Join(r.Secrets, ", ")
	}
}

// Table prints one row per result.
func (p *Printer) Table(results []model.ScanResult) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Path, p.StatusCell(r.Status), SecretsCell(r)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border).
		Headers("File Path", "Status", "Secrets Found").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.bold.Padding(0, 1)
			}
			switch col {
			case 0:
				return p.path.Padding(0, 1)
			case 2:
				return p.secrets.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintln(p.w, t.Render())
}

// Summary prints the run aggregates.
func (p *Printer) Summary(s model.Summary) {
	fmt.Fprintf(p.w, "\n%s\n", p.heading.Render("📦 Scan Summary"))
	fmt.Fprintf(p.w, "%s %s\n", p.bold.Render("Total files scanned:"), p.path.Render(fmt.Sprint(s.FilesScanned)))
	fmt.Fprintf(p.w, "%s %s\n", p.bold.Render("Files with secrets:"), p.alert.Render(fmt.Sprint(s.FilesWithSecrets)))
	fmt.Fprintf(p.w, "%s %s\n", p.bold.Render("Total secrets found:"), p.secrets.Bold(true).Render(fmt.Sprint(s.TotalSecrets)))
	if s.Errors > 0 {
		fmt.Fprintf(p.w, "%s %s\n", p.bold.Render("Unreadable files:"), p.errStyle.Render(fmt.Sprint(s.Errors)))
	}
	fmt.Fprintf(p.w, "%s %s\n", p.bold.Render("Time taken:"), p.elapsed.Render(FormatElapsed(s.Elapsed)))
}

// Footer prints the closing lines.
func (p *Printer) Footer() {
	fmt.Fprintf(p.w, "\n🔗 %s\n%s\n", p.path.Underline(true).Render(ProjectURL), p.clean.Bold(true).Render(model.IconClean+" Scan completed. Stay safe!"))
}

// Full prints table, summary and footer for a report.
func (p *Printer) Full(r model.Report) {
	p.Table(r.Results)
	p.Summary(r.Summary)
	p.Footer()
}

// FormatElapsed rounds a duration for display.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, r model.Report) error {
	if r.Results == nil {
		r.Results = []model.ScanResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
