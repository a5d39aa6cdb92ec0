package tui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func (m Model) copyBED() tea.Cmd {
	r := m.selected()
	if r == nil {
		return nil
	}
	line := r.BED()
	return func() tea.Msg {
		if err := writeClipboard(line); err != nil {
			return statusMsg("Clipboard error: " + err.Error())
		}
		return statusMsg("Copied " + line)
	}
}

func (m Model) copyBases() tea.Cmd {
	r := m.selected()
	if r == nil {
		return nil
	}
	if r.Bases == "" {
		return func() tea.Msg { return statusMsg("No bases recorded for this region") }
	}
	bases := r.Bases
	return func() tea.Msg {
		if err := writeClipboard(bases); err != nil {
			return statusMsg("Clipboard error: " + err.Error())
		}
		return statusMsg("Copied region bases to clipboard")
	}
}

func (m Model) rescan() tea.Cmd {
	fn := m.rescanFunc
	return func() tea.Msg {
		regions, err := fn()
		return rescanMsg{regions: regions, err: err}
	}
}

func (m Model) savePrefs() tea.Cmd {
	p := m.prefs
	return func() tea.Msg {
		if err := SavePrefs(p); err != nil {
			return statusMsg("Could not save preferences: " + err.Error())
		}
		return nil
	}
}
