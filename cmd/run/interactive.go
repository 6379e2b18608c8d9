package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ericrobolson/heimdall"
	"github.com/ericrobolson/heimdall/watcher"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	swapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const maxEvents = 12

type interactiveModel struct {
	err      error
	w        *watcher.Watcher
	filename string
	interval time.Duration
	state    heimdall.State
	tick     int
	step     int64
	events   []string
	spinner  spinner.Model
	quitting bool
}

func newInteractiveModel(filename string, interval time.Duration) *interactiveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return &interactiveModel{
		filename: filename,
		interval: interval,
		step:     1,
		spinner:  s,
	}
}

type startedMsg struct {
	err   error
	w     *watcher.Watcher
	state heimdall.State
}

type tickMsg time.Time

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start)
}

func (m *interactiveModel) start() tea.Msg {
	w, state, err := watcher.New(context.Background(), watcher.Config{Path: m.filename})
	if err != nil {
		return startedMsg{err: err}
	}
	return startedMsg{w: w, state: state}
}

func (m *interactiveModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if m.w != nil {
				ctx := context.Background()
				if err := m.w.Finalize(ctx, &m.state); err != nil {
					m.logf(errorStyle.Render(fmt.Sprintf("finalize: %v", err)))
				}
				m.w.Close(ctx)
			}
			return m, tea.Quit

		case "b":
			// Ship a rebuilt artifact with a bigger step; the next tick
			// picks it up through the normal watch path.
			if m.w != nil {
				m.step++
				if err := writeBumped(m.filename, m.step); err != nil {
					m.logf(errorStyle.Render(fmt.Sprintf("rebuild: %v", err)))
				} else {
					m.logf(swapStyle.Render(fmt.Sprintf("shipped rebuild with step %d", m.step)))
				}
			}
		}

	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.w = msg.w
		m.state = msg.state
		m.logf("artifact loaded, state %d", m.state)
		return m, m.tickCmd()

	case tickMsg:
		if m.w == nil || m.quitting {
			return m, nil
		}
		ctx := context.Background()

		outcome, err := m.w.Watch(ctx, &m.state)
		switch outcome {
		case watcher.Updated:
			m.logf(swapStyle.Render(fmt.Sprintf("swapped in new build, state %d", m.state)))
		case watcher.Failed:
			m.logf(errorStyle.Render(fmt.Sprintf("watch: %v", err)))
		}

		if err := m.w.Update(ctx, &m.state); err != nil {
			m.logf(errorStyle.Render(fmt.Sprintf("update: %v", err)))
		}
		m.tick++
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) logf(format string, args ...any) {
	m.events = append(m.events, fmt.Sprintf(format, args...))
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.quitting {
		return fmt.Sprintf("Final state: %d\n", m.state)
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("heimdall"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if m.w == nil {
		b.WriteString(m.spinner.View())
		b.WriteString(" loading artifact...\n")
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(fmt.Sprintf(" tick %d  state ", m.tick))
	b.WriteString(stateStyle.Render(fmt.Sprintf("%d", m.state)))
	b.WriteString("\n\n")

	for _, ev := range m.events {
		b.WriteString("  ")
		b.WriteString(ev)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("b ship rebuild • q quit"))

	return b.String()
}

// writeBumped emits a rebuilt demo artifact and bumps the file's mtime past
// the previous build so coarse-timestamp filesystems still see the change.
func writeBumped(path string, step int64) error {
	var prev time.Time
	if info, err := os.Stat(path); err == nil {
		prev = info.ModTime()
	}
	if err := os.WriteFile(path, demoArtifact(step), 0o644); err != nil {
		return err
	}
	if next := prev.Add(time.Second); next.After(time.Now()) {
		return os.Chtimes(path, next, next)
	}
	return nil
}

func runInteractive(filename string, interval time.Duration) error {
	p := tea.NewProgram(newInteractiveModel(filename, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
