// Package tui is an interactive terminal preview of the character
// simulation. Mouse motion and presses feed the input tracker; a activates
// physics, s stops it, q quits.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/saintsjh/PortfolioWebsite/internal/input"
	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/lifecycle"
	"github.com/saintsjh/PortfolioWebsite/internal/render"
)

var (
	accent = lipgloss.NewStyle().Foreground(lipgloss.Color(render.Accent)).Bold(true)
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	warn   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type tickMsg time.Time

// Model is the bubbletea model of the preview.
type Model struct {
	ctrl     *lifecycle.Controller
	term     *render.Terminal
	viewport layout.Viewport
	fps      int
	err      error
}

// New creates a preview of ctrl, whose content is laid out in vp.
func New(ctrl *lifecycle.Controller, vp layout.Viewport, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	ctrl.SetViewport(vp)
	return Model{
		ctrl:     ctrl,
		term:     render.NewTerminal(80, 22),
		viewport: vp,
		fps:      fps,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "a":
			m.err = m.ctrl.ActivatePhysics()
		case "s":
			m.ctrl.StopPhysics()
			m.err = nil
		}

	case tea.WindowSizeMsg:
		m.term = render.NewTerminal(msg.Width, max(1, msg.Height-2))

	case tea.MouseMsg:
		m.ctrl.Tracker().Handle(m.pointer(msg))

	case tickMsg:
		m.ctrl.Tick()
		return m, m.tick()
	}
	return m, nil
}

// pointer converts a terminal mouse event into a pointer event in
// viewport pixels, aimed at the centre of the cell.
func (m Model) pointer(msg tea.MouseMsg) input.Event {
	ev := input.Event{
		Type: input.PointerMove,
		X:    (float64(msg.X) + 0.5) / float64(m.term.Cols) * m.viewport.Width,
		Y:    (float64(msg.Y) + 0.5) / float64(m.term.Rows) * m.viewport.Height,
	}
	switch msg.Action {
	case tea.MouseActionPress:
		ev.Type = input.PointerDown
	case tea.MouseActionRelease:
		ev.Type = input.PointerUp
	}
	return ev
}

func (m Model) View() string {
	frame := m.ctrl.Frame()
	if frame == nil || frame.State == lifecycle.Measuring {
		return dim.Render("measuring…")
	}

	body := m.term.Bodies(frame.Bodies, m.viewport.Width, m.viewport.Height)
	status := accent.Render(string(frame.State)) +
		dim.Render(fmt.Sprintf("  %d bodies  a: activate  s: stop  q: quit", len(frame.Bodies)))
	if frame.ShowHint {
		status += accent.Render("  drag to play")
	}
	if m.err != nil {
		status += "  " + warn.Render(m.err.Error())
	}
	return body + "\n" + status
}

// Run starts the preview full-screen with mouse tracking.
func Run(ctrl *lifecycle.Controller, vp layout.Viewport, fps int) error {
	p := tea.NewProgram(New(ctrl, vp, fps), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
