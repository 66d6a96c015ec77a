package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/tracelog/sink/memory"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	byteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const emitInterval = 250 * time.Millisecond

type viewModel struct {
	session  *memory.Session
	demo     *demo
	view     viewport.Model
	err      error
	seq      int
	paused   bool
	requests bool
	ready    bool
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(emitInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newViewModel(session *memory.Session, d *demo) *viewModel {
	return &viewModel{
		session:  session,
		demo:     d,
		requests: true,
	}
}

func (m *viewModel) Init() tea.Cmd {
	return tick()
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case " ":
			m.paused = !m.paused

		case "r":
			m.requests = !m.requests
			if m.requests {
				m.session.Enable(":Request;")
			} else {
				m.session.Disable(":Request;")
			}

		case "d":
			m.session.Drain()
			m.refresh()
		}

	case tea.WindowSizeMsg:
		headerHeight := 4
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-headerHeight)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - headerHeight
		}
		m.refresh()

	case tickMsg:
		if !m.paused {
			if err := m.demo.emit(m.seq); err != nil {
				m.err = err
			}
			m.seq++
			m.refresh()
		}
		return m, tick()
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *viewModel) refresh() {
	records := m.session.Records()
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "#%-3d %s %s  %s\n",
			r.EventID,
			nameStyle.Render(fmt.Sprintf("%-42s", r.WireName)),
			byteStyle.Render(fmt.Sprintf("%4dB", len(r.Data))),
			hexPreview(r.Data, 24))
	}
	atBottom := m.view.AtBottom()
	m.view.SetContent(b.String())
	if atBottom {
		m.view.GotoBottom()
	}
}

func (m *viewModel) View() string {
	if !m.ready {
		return "Starting session..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("traceview"))
	b.WriteString(" ")
	if m.paused {
		b.WriteString(pausedStyle.Render("paused"))
	} else {
		b.WriteString(statusStyle.Render("live"))
	}
	fmt.Fprintf(&b, "  %d records, %d/%d bytes",
		len(m.session.Records()), m.session.Used(), m.session.Capacity())
	if m.err != nil {
		b.WriteString("  ")
		b.WriteString(pausedStyle.Render(m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause • r toggle requests • d drain • ↑/↓ scroll • q quit"))
	return b.String()
}

func runInteractive(capacity uint32, enable string) error {
	session := memory.NewSession(memory.Config{Capacity: capacity})
	d, err := newDemo(session)
	if err != nil {
		return err
	}
	defer d.close()
	session.Enable(enable)

	p := tea.NewProgram(newViewModel(session, d), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
