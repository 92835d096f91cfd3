package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"passcan/internal/model"
)

// MsgScanStarted carries the channel a running scan reports progress on.
type MsgScanStarted struct {
	Progress <-chan tea.Msg
}

// MsgCandidates reports how many files the running scan will visit.
type MsgCandidates int

// MsgFileDone reports one finished file.
type MsgFileDone model.ScanResult

// MsgScanReady indicates that the scan has completed.
type MsgScanReady model.Report

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.Results.SetColumns(columns(msg.Width))
		height := msg.Height - 9
		if height < 3 {
			height = 3
		}
		m.Results.SetHeight(height)
		return m, nil

	case MsgScanStarted:
		m.events = msg.Progress
		return m, waitFor(m.events)

	case MsgCandidates:
		m.Total = int(msg)
		return m, waitFor(m.events)

	case MsgFileDone:
		m.Done++
		return m, waitFor(m.events)

	case MsgScanReady:
		m.Loading = false
		m.Report = model.Report(msg)
		m.refreshRows()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, keys.Filter):
			if !m.Loading {
				m.AlertsOnly = !m.AlertsOnly
				m.refreshRows()
			}
			return m, nil
		case key.Matches(msg, keys.Rescan):
			if m.Loading {
				return m, nil
			}
			m.Loading = true
			m.Total, m.Done = 0, 0
			return m, m.startScan()
		}
		if !m.Loading {
			m.Results, cmd = m.Results.Update(msg)
		}
		return m, cmd
	}

	if m.Loading {
		m.Spinner, cmd = m.Spinner.Update(msg)
	}
	return m, cmd
}

// refreshRows rebuilds the table from the report and the alerts filter.
func (m *AppModel) refreshRows() {
	m.Visible = m.Visible[:0]
	for i, r := range m.Report.Results {
		if m.AlertsOnly && r.Status != model.StatusAlert {
			continue
		}
		m.Visible = append(m.Visible, i)
	}

	rows := make([]table.Row, 0, len(m.Visible))
	for _, idx := range m.Visible {
		rows = append(rows, resultRow(m.Root, m.Report.Results[idx]))
	}
	m.Results.SetRows(rows)

	// Bounds check
	if m.Results.Cursor() >= len(rows) {
		if len(rows) > 0 {
			m.Results.SetCursor(len(rows) - 1)
		} else {
			m.Results.SetCursor(0)
		}
	}
}

// Selected returns the result under the cursor.
func (m AppModel) Selected() (model.ScanResult, bool) {
	c := m.Results.Cursor()
	if c < 0 || c >= len(m.Visible) {
		return model.ScanResult{}, false
	}
	return m.Report.Results[m.Visible[c]], true
}

// startScan launches a scan in the background. Progress and the final report
// arrive as messages on the returned channel. Once the model quits, sends are
// dropped and the scan runs to completion without a reader.
func (m AppModel) startScan() tea.Cmd {
	root, runner, ctx := m.Root, m.runner, m.ctx
	start := func() tea.Msg {
		ch := make(chan tea.Msg, 64)
		send := func(msg tea.Msg) {
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		}
		go func() {
			defer close(ch)
			report := runner.RunWith(root,
				func(n int) { send(MsgCandidates(n)) },
				func(r model.ScanResult) { send(MsgFileDone(r)) },
			)
			send(MsgScanReady(report))
		}()
		return MsgScanStarted{Progress: ch}
	}
	return tea.Batch(start, m.Spinner.Tick)
}

// waitFor delivers the next progress message. Update queues it again after
// each progress message; MsgScanReady is always the last one.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
