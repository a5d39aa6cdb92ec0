package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/dustmask/dustmask/internal/types"
)

func TestView_Rendering(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	regions := []types.Region{
		{Path: "genome.fa", Record: "chr1", Start: 10, End: 40, Bases: strings.Repeat("CA", 15)},
		{Path: "genome.fa", Record: "chr3", Start: 0, End: 25, Bases: strings.Repeat("T", 25)},
	}

	m := NewModel(regions, nil)
	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("View before sizing = %q", got)
	}

	m.ready = true
	m.width = 100
	m.height = 40
	m.layout()
	m.updateViewportContent()

	output := m.View()
	if output == "" {
		t.Fatal("View returned empty string")
	}
	if !strings.Contains(output, "2 regions") {
		t.Error("stats header missing region count")
	}

	m.showHelp = true
	if output = m.View(); !strings.Contains(output, "Keyboard Shortcuts") {
		t.Error("help popup not rendered")
	}
	m.showHelp = false

	m.prefs.ShowDetail = false
	m.layout()
	if m.View() == "" {
		t.Error("View without detail pane returned empty string")
	}

	m.viewingCached = true
	m.cachedTimestamp = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if output = m.View(); !strings.Contains(output, "Cached") {
		t.Error("cached timestamp missing from status bar")
	}
}

func TestView_Empty(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	m := NewModel(nil, nil)
	m.ready = true
	m.width = 80
	m.height = 24
	m.layout()
	if output := m.View(); !strings.Contains(output, "No low-complexity regions") {
		t.Error("empty state text not rendered")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDetailContent_ArchiveMember(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	r := types.Region{Path: "refs.zip::inner.tar::chr1.fa", Record: "chr1", Start: 0, End: 12}
	m := NewModel([]types.Region{r}, nil)

	got := m.detailContent(r)
	if !strings.Contains(got, "refs.zip (2 levels deep)") {
		t.Errorf("archive origin missing from detail pane:\n%s", got)
	}
	plain := m.detailContent(types.Region{Path: "chr1.fa", Record: "chr1", Start: 0, End: 12})
	if strings.Contains(plain, "Inside:") {
		t.Error("plain file should not show an archive origin")
	}
}
