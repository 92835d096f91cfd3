package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"passcan/internal/model"
	"passcan/internal/scan"
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Root   string
	Report model.Report
	runner *scan.Runner

	// Scan state
	Loading bool
	Total   int
	Done    int
	events  <-chan tea.Msg

	// Cancelled on quit so a running scan stops sending progress.
	ctx    context.Context
	cancel context.CancelFunc

	// UI State
	WindowSize tea.WindowSizeMsg
	AlertsOnly bool
	Visible    []int // Indices into Report.Results shown in the table

	// Components
	Spinner spinner.Model
	Bar     progress.Model
	Results table.Model
}

type keyMap struct {
	Quit   key.Binding
	Filter key.Binding
	Rescan key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Filter: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "toggle filter"),
	),
	Rescan: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rescan"),
	),
}

// InitialModel returns the state before the first scan has started.
func InitialModel(root string, runner *scan.Runner) AppModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	ctx, cancel := context.WithCancel(context.Background())
	return AppModel{
		Root:    root,
		runner:  runner,
		ctx:     ctx,
		cancel:  cancel,
		Loading: true,
		Spinner: sp,
		Bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		Results: t,
	}
}

// Init starts the first scan.
func (m AppModel) Init() tea.Cmd {
	return m.startScan()
}
