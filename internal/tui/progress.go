package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
	"github.com/navyaanair/M-A-lead-generation-tool/internal/pipeline"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RunFunc performs one pipeline pass, reporting progress as it goes.
type RunFunc func(ctx context.Context, onProgress func(model.Progress)) (*pipeline.Result, error)

type progressMsg model.Progress

type runDoneMsg struct {
	result *pipeline.Result
	err    error
}

type spinnerTickMsg struct{}

type progressModel struct {
	title     string
	bar       progress.Model
	frame     int
	current   int
	total     int
	merging   bool
	canceling bool
	cancel    context.CancelFunc
	result    *pipeline.Result
	err       error
	done      bool
}

func newProgressModel(title string, cancel context.CancelFunc) progressModel {
	return progressModel{
		title:  title,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.tick()
}

func (m progressModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		// A zero total marks the end of a run.
		if msg.Total == 0 {
			m.merging = true
			return m, nil
		}
		m.current = msg.Current
		m.total = msg.Total
		return m, nil
	case runDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.canceling {
			m.canceling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
	}
	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.current) / float64(m.total)
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	spin := spinnerStyle.Render(spinnerFrames[m.frame])
	status := m.title
	switch {
	case m.canceling:
		status = "Canceling..."
	case m.merging:
		status = "Ranking results..."
	}
	counts := countStyle.Render(fmt.Sprintf("%d/%d", m.current, m.total))
	return fmt.Sprintf("%s %s\n  %s %s\n", spin, status, m.bar.ViewAs(m.percent()), counts)
}

// RunProgress shows a progress bar while run executes. It renders inline (no
// alt screen). ctrl+c cancels the run and waits for it to return.
func RunProgress(ctx context.Context, title string, run RunFunc) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(title, cancel))
	go func() {
		res, err := run(ctx, func(pr model.Progress) {
			p.Send(progressMsg(pr))
		})
		p.Send(runDoneMsg{result: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm := final.(progressModel)
	return fm.result, fm.err
}
