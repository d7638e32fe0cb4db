package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/rank"
)

// Lines per lead in the list view (name + subtitle + blank separator).
const leadItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")) // bright blue

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	leadTitleStyle = lipgloss.NewStyle().
			Bold(true)

	leadSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(18)

	detailValueStyle = lipgloss.NewStyle()

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	notAnalyzedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
)

var tierColors = map[rank.Tier]lipgloss.Color{
	rank.TierExcellent: lipgloss.Color("42"),
	rank.TierGood:      lipgloss.Color("39"),
	rank.TierModerate:  lipgloss.Color("214"),
	rank.TierLimited:   lipgloss.Color("196"),
}

func scoreStyle(score int) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(tierColors[rank.TierOf(score)])
}

type browserModel struct {
	leads   []model.RankedCompany
	summary rank.Summary

	list   viewport.Model
	detail viewport.Model
	cursor int
	width  int
	height int
	ready  bool
	view   viewState
}

func newBrowserModel(leads []model.RankedCompany) browserModel {
	return browserModel{
		leads:   leads,
		summary: rank.Summarize(leads),
	}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detail.Width = m.width - 4
			m.detail.Height = m.height - 4
			m.detail.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}
	return m, nil
}

func (m browserModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browserModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *browserModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.leads)-1, 0))
	m.list.SetContent(renderLeads(m.leads, m.cursor))
	m.ensureCursorVisible()
}

func (m *browserModel) ensureCursorVisible() {
	top := m.cursor * leadItemHeight
	bottom := top + leadItemHeight - 1

	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m browserModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.leads) == 0 {
		return m, nil
	}
	m.view = viewDetail
	m.detail = viewport.New(m.width-4, m.height-4)
	m.detail.SetContent(m.renderDetail())
	return m, nil
}

func (m *browserModel) recalcLayout() {
	width := max(m.width-2, 20)
	// Header (1 line) + border top/bottom (2) + status bar (1).
	height := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(width, height)
		m.ready = true
	} else {
		m.list.Width = width
		m.list.Height = height
	}
	m.list.SetContent(renderLeads(m.leads, m.cursor))
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browserModel) viewList() string {
	header := headerStyle.Render(fmt.Sprintf("Ranked Leads (%d)", len(m.leads)))
	pane := borderStyle.Width(m.list.Width).Render(m.list.View())

	s := m.summary
	statusText := fmt.Sprintf(" %d total | %d analyzed | %d degraded | avg %.1f    ↑/↓ cursor  Enter detail  q quit",
		s.Total, s.Analyzed, s.Degraded, s.AverageScore)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + pane + "\n" + statusBar
}

func (m browserModel) viewDetail() string {
	title := detailTitleStyle.Render("Lead Details")
	content := borderStyle.Width(m.width - 2).Render(m.detail.View())
	statusBar := statusBarStyle.Width(m.width).Render(" esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m browserModel) selected() model.RankedCompany {
	return m.leads[m.cursor]
}

func (m browserModel) renderDetail() string {
	l := m.selected()
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Rank", fmt.Sprintf("#%d", l.Rank))
	addField("Company", l.Name)
	addField("Industry", l.Industry)
	addField("Location", l.Location)
	addField("Revenue", l.Revenue)
	if l.Employees > 0 {
		addField("Employees", fmt.Sprintf("%d", l.Employees))
	}
	if km := l.KeyMetrics; km != nil {
		addField("Growth", km.GrowthRate)
		addField("Margins", km.Margins)
		addField("Retention", km.CustomerRetention)
		addField("Market Position", km.MarketPosition)
	}

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}
	bullets := func(items []string) {
		for _, it := range items {
			if it != "" {
				b.WriteString(detailValueStyle.Render("  • "+it) + "\n")
			}
		}
	}

	if l.Description != "" {
		b.WriteByte('\n')
		b.WriteString(wordWrap(l.Description, wrapWidth) + "\n")
	}

	a := l.Analysis
	if a == nil {
		b.WriteByte('\n')
		b.WriteString(hintStyle.Render("  not analyzed") + "\n")
		return b.String()
	}

	b.WriteByte('\n')
	b.WriteString(divider("── Strategic Fit ") + "\n\n")
	b.WriteString(detailLabelStyle.Render("Score"))
	b.WriteString(scoreStyle(a.Score).Render(fmt.Sprintf("%d/100  %s", a.Score, rank.Label(a.Score))))
	b.WriteByte('\n')
	addField("Integration", string(a.IntegrationComplexity))
	addField("Time to Value", a.TimeToValue)
	if a.Degraded {
		b.WriteString(hintStyle.Render("  analysis unavailable, placeholder result") + "\n")
	}

	if a.Reasoning != "" {
		b.WriteByte('\n')
		b.WriteString(wordWrap(a.Reasoning, wrapWidth) + "\n")
	}
	if a.StrategicValue != "" {
		b.WriteByte('\n')
		b.WriteString(detailLabelStyle.Render("Strategic Value") + "\n")
		b.WriteString(wordWrap(a.StrategicValue, wrapWidth) + "\n")
	}
	if len(a.Synergies) > 0 {
		b.WriteByte('\n')
		b.WriteString(divider("── Synergies ") + "\n")
		bullets(a.Synergies)
	}
	if len(a.Risks) > 0 {
		b.WriteByte('\n')
		b.WriteString(divider("── Risks ") + "\n")
		bullets(a.Risks)
	}
	return b.String()
}

func renderLeads(leads []model.RankedCompany, cursor int) string {
	if len(leads) == 0 {
		return "  (no leads)"
	}

	var b strings.Builder
	for i, l := range leads {
		titleSt := leadTitleStyle
		subtitleSt := leadSubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		score := notAnalyzedStyle.Render("--")
		if l.Analysis != nil {
			score = scoreStyle(l.Analysis.Score).Render(fmt.Sprintf("%3d", l.Analysis.Score))
		}

		b.WriteString(prefix)
		b.WriteString(score + " ")
		b.WriteString(titleSt.Render(fmt.Sprintf("#%d %s", l.Rank, l.Name)))
		b.WriteByte('\n')

		sub := fmt.Sprintf("%s · %s", l.Industry, l.Location)
		if l.Analysis != nil {
			sub += " · " + rank.Label(l.Analysis.Score)
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(sub))
		b.WriteByte('\n')

		if i < len(leads)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunBrowser launches the full-screen ranked results browser.
func RunBrowser(leads []model.RankedCompany) error {
	p := tea.NewProgram(newBrowserModel(leads), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
