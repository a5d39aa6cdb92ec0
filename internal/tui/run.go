package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustmask/dustmask/internal/types"
)

// Run starts the region browser.
func Run(regions []types.Region, rescanFunc func() ([]types.Region, error)) error {
	m := NewModel(regions, rescanFunc)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// RunCached starts the browser over results loaded from the last-scan file.
func RunCached(regions []types.Region, rescanFunc func() ([]types.Region, error), timestamp time.Time) error {
	m := NewModel(regions, rescanFunc)
	m.viewingCached = true
	m.cachedTimestamp = timestamp
	m.lastScanTime = timestamp
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
