package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustmask/dustmask/internal/artifacts"
	"github.com/dustmask/dustmask/internal/report"
	"github.com/dustmask/dustmask/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	baseStyles = map[byte]lipgloss.Style{
		'A': lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		'C': lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		'G': lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		'T': lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
	otherBaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Sort orders for the region table.
const (
	SortPosition = "position"
	SortLength   = "length"
)

type statusMsg string

type rescanMsg struct {
	regions []types.Region
	err     error
}

// Model is the bubbletea model behind `dustmask browse`.
type Model struct {
	table       table.Model
	viewport    viewport.Model
	spinner     spinner.Model
	searchInput textinput.Model

	regions []types.Region // as scanned
	display []types.Region // filtered and sorted view of regions

	rescanFunc func() ([]types.Region, error)
	prefs      Prefs

	ready         bool
	width         int
	height        int
	statusMessage string
	showHelp      bool
	searchMode    bool
	searchQuery   string
	scanning      bool

	viewingCached   bool
	cachedTimestamp time.Time
	lastScanTime    time.Time
}

// NewModel builds a browser over regions. rescanFunc may be nil, in which
// case the rescan key is disabled.
func NewModel(regions []types.Region, rescanFunc func() ([]types.Region, error)) Model {
	columns := []table.Column{
		{Title: "Path", Width: 30},
		{Title: "Record", Width: 20},
		{Title: "Start", Width: 10},
		{Title: "End", Width: 10},
		{Title: "Length", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
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
	s.Cell = s.Cell.Foreground(lipgloss.Color("252"))
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "path, record or bases"
	ti.Prompt = "/ "
	ti.CharLimit = 128

	m := Model{
		table:        t,
		spinner:      sp,
		searchInput:  ti,
		regions:      regions,
		rescanFunc:   rescanFunc,
		prefs:        LoadPrefs(),
		lastScanTime: time.Now(),
	}
	m.statusMessage = fmt.Sprintf("%d regions", len(regions))
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// refresh recomputes the displayed rows from regions, the search query and
// the sort preference.
func (m *Model) refresh() {
	q := strings.ToLower(strings.TrimSpace(m.searchQuery))
	m.display = make([]types.Region, 0, len(m.regions))
	for _, r := range m.regions {
		if q == "" || matchesQuery(r, q) {
			m.display = append(m.display, r)
		}
	}
	if m.prefs.SortBy == SortLength {
		sort.SliceStable(m.display, func(i, j int) bool {
			return m.display[i].Len() > m.display[j].Len()
		})
	}

	rows := make([]table.Row, 0, len(m.display))
	for _, r := range m.display {
		rows = append(rows, table.Row{
			r.Path,
			r.Record,
			strconv.Itoa(r.Start),
			strconv.Itoa(r.End),
			strconv.Itoa(r.Len()),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.updateViewportContent()
}

func matchesQuery(r types.Region, q string) bool {
	return strings.Contains(strings.ToLower(r.Path), q) ||
		strings.Contains(strings.ToLower(r.Record), q) ||
		strings.Contains(strings.ToLower(r.Bases), q)
}

func (m Model) selected() *types.Region {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.display) {
		return nil
	}
	r := m.display[idx]
	return &r
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	r := m.selected()
	if r == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.detailContent(*r))
	m.viewport.GotoTop()
}

func (m Model) detailContent(r types.Region) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Region") + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Path:"), r.Path)
	if artifacts.IsVirtualPath(r.Path) {
		parts := artifacts.SplitPath(r.Path)
		fmt.Fprintf(&b, "%s %s (%d levels deep)\n", keyStyle.Render("Inside:"), artifacts.RootOf(r.Path), len(parts)-1)
	}
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Record:"), r.Record)
	fmt.Fprintf(&b, "%s [%d, %d)  %d bp\n\n", keyStyle.Render("Interval:"), r.Start, r.End, r.Len())

	if r.Bases != "" {
		b.WriteString(keyStyle.Render("Bases:") + "\n")
		b.WriteString(wrapBases(colorBases(r.Bases), m.viewport.Width-2))
		b.WriteString("\n\n")
	}

	if data, err := json.MarshalIndent(r, "", "  "); err == nil {
		b.WriteString(keyStyle.Render("JSON:") + "\n")
		b.WriteString(report.HighlightString(string(data), "json"))
		b.WriteString("\n")
	}
	return b.String()
}

// colorBases styles each nucleotide; ambiguous and lowercase bases are dimmed.
func colorBases(s string) []string {
	out := make([]string, 0, len(s))
	for _, ch := range s {
		st := otherBaseStyle
		if ch < 0x80 {
			if bs, ok := baseStyles[byte(ch)]; ok {
				st = bs
			}
		}
		out = append(out, st.Render(string(ch)))
	}
	return out
}

func wrapBases(styled []string, width int) string {
	if width < 10 {
		width = 60
	}
	var b strings.Builder
	for i, s := range styled {
		if i > 0 && i%width == 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
	}
	return b.String()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.updateViewportContent()
		return m, nil

	case statusMsg:
		m.statusMessage = string(msg)
		return m, nil

	case rescanMsg:
		m.scanning = false
		if msg.err != nil {
			m.statusMessage = "Rescan failed: " + msg.err.Error()
			return m, nil
		}
		m.regions = msg.regions
		m.viewingCached = false
		m.lastScanTime = time.Now()
		m.statusMessage = fmt.Sprintf("Rescanned: %d regions", len(msg.regions))
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg)
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "enter":
			m.prefs.ShowDetail = !m.prefs.ShowDetail
			m.layout()
			m.updateViewportContent()
			return m, m.savePrefs()
		case "c":
			return m, m.copyBED()
		case "y":
			return m, m.copyBases()
		case "s":
			if m.prefs.SortBy == SortLength {
				m.prefs.SortBy = SortPosition
			} else {
				m.prefs.SortBy = SortLength
			}
			m.statusMessage = "Sorted by " + m.prefs.SortBy
			m.refresh()
			return m, m.savePrefs()
		case "/":
			m.searchMode = true
			m.searchInput.SetValue(m.searchQuery)
			m.searchInput.Focus()
			return m, textinput.Blink
		case "esc":
			if m.searchQuery != "" {
				m.searchQuery = ""
				m.refresh()
				m.statusMessage = fmt.Sprintf("%d regions", len(m.display))
			}
			return m, nil
		case "r":
			if m.rescanFunc == nil || m.scanning {
				return m, nil
			}
			m.scanning = true
			m.statusMessage = "Rescanning..."
			return m, tea.Batch(m.spinner.Tick, m.rescan())
		case "pgdown", "ctrl+f":
			m.viewport.HalfPageDown()
			return m, nil
		case "pgup", "ctrl+b":
			m.viewport.HalfPageUp()
			return m, nil
		}
	}

	prev := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)
	if m.table.Cursor() != prev {
		m.updateViewportContent()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		m.statusMessage = fmt.Sprintf("%d of %d regions match %q", len(m.display), len(m.regions), m.searchQuery)
		return m, nil
	case "esc", "ctrl+c":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchQuery = ""
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchQuery = m.searchInput.Value()
	m.refresh()
	return m, cmd
}

func (m *Model) layout() {
	if !m.ready {
		return
	}
	usable := m.width - 12
	numWidth := 10
	lenWidth := 8
	remaining := usable - 2*numWidth - lenWidth
	pathWidth := int(float64(remaining) * 0.55)
	recordWidth := remaining - pathWidth
	if pathWidth < 20 {
		pathWidth = 20
	}
	if recordWidth < 12 {
		recordWidth = 12
	}
	cols := m.table.Columns()
	cols[0].Width = pathWidth
	cols[1].Width = recordWidth
	cols[2].Width = numWidth
	cols[3].Width = numWidth
	cols[4].Width = lenWidth
	m.table.SetColumns(cols)
	m.table.SetWidth(m.width)

	statsHeaderHeight := 1
	available := m.height - lipgloss.Height(statusStyle.Render("")) - statsHeaderHeight
	tableHeight := available - tableBorderStyle.GetVerticalFrameSize()
	if m.prefs.ShowDetail {
		tableHeight = int(float64(available) * 0.45)
		vh := available - tableHeight - detailPaneBorderStyle.GetVerticalFrameSize() - tableBorderStyle.GetVerticalFrameSize()
		if vh < 3 {
			vh = 3
		}
		w := m.width - detailPaneBorderStyle.GetHorizontalFrameSize()
		if m.viewport.Width == 0 && m.viewport.Height == 0 {
			m.viewport = viewport.New(w, vh)
		} else {
			m.viewport.Width = w
			m.viewport.Height = vh
		}
	}
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.statsHeader()

	var tableRender string
	if len(m.display) == 0 {
		text := "No low-complexity regions"
		if m.searchQuery != "" {
			text = fmt.Sprintf("No regions match %q", m.searchQuery)
		}
		tableRender = tableBorderStyle.Render(
			lipgloss.Place(m.width-2, m.table.Height(), lipgloss.Center, lipgloss.Center, emptyTextStyle.Render(text)),
		)
	} else {
		tableRender = tableBorderStyle.Render(m.table.View())
	}

	parts := []string{header, tableRender}
	if m.prefs.ShowDetail {
		parts = append(parts, detailPaneBorderStyle.Render(m.viewport.View()))
	}
	parts = append(parts, m.bottomBar())
	mainView := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(helpText()))
	}
	return mainView
}

func (m Model) statsHeader() string {
	masked := 0
	files := map[string]struct{}{}
	for _, r := range m.regions {
		masked += r.Len()
		files[r.Path] = struct{}{}
	}
	text := fmt.Sprintf(" %d regions · %d bp masked · %d files · sort: %s", len(m.regions), masked, len(files), m.sortName())
	if m.viewingCached {
		text += " · cached"
	}
	return titleStyle.Render(text)
}

func (m Model) sortName() string {
	if m.prefs.SortBy == SortLength {
		return SortLength
	}
	return SortPosition
}

func (m Model) bottomBar() string {
	if m.searchMode {
		bar := lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("15")).
			Width(m.width).
			Padding(0, 1)
		return bar.Render(m.searchInput.View() + fmt.Sprintf(" (%d matches)", len(m.display)))
	}

	left := m.statusMessage
	if m.scanning {
		left = m.spinner.View() + " " + left
	}
	var right string
	if m.viewingCached {
		right = "Cached: " + m.cachedTimestamp.Format("Jan 2, 15:04")
	} else if !m.lastScanTime.IsZero() {
		right = "Scanned: " + formatDuration(time.Since(m.lastScanTime)) + " ago"
	}
	spacer := m.width - 4 - lipgloss.Width(left) - lipgloss.Width(right)
	if spacer < 1 {
		spacer = 1
	}
	return statusStyle.Width(m.width).Padding(0, 2).Render(left + strings.Repeat(" ", spacer) + right)
}

func helpText() string {
	section := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	row := func(key, desc string) string {
		k := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(key)
		pad := 12 - len(key)
		if pad < 1 {
			pad = 1
		}
		return "  " + k + strings.Repeat(" ", pad) + desc
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("Keyboard Shortcuts"),
		"",
		section.Render("Navigation"),
		row("↑ / ↓", "Move between regions"),
		row("PgUp/PgDn", "Scroll detail pane"),
		row("enter", "Toggle detail pane"),
		"",
		section.Render("Search & Sort"),
		row("/", "Filter regions"),
		row("esc", "Clear filter"),
		row("s", "Sort by position / length"),
		"",
		section.Render("Copy"),
		row("c", "Copy BED line"),
		row("y", "Copy region bases"),
		"",
		row("r", "Rescan"),
		row("q", "Quit"),
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
