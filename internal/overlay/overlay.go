// Package overlay is the foreground control surface shown in the terminal
// while a kiosk session is active. It swallows all input except the escape
// chord, and gates that chord behind administrator authentication: the
// sole supported path out of a locked session.
package overlay

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"marquee/internal/escape"
)

// escapeChord is the only key the overlay reacts to.
const escapeChord = "ctrl+q"

// Status is what the overlay displays about the running session.
type Status struct {
	Locator string
	Kind    string
	Player  string
	Locked  bool
}

type authResultMsg bool

// Model is the bubbletea model for the overlay.
type Model struct {
	status  Status
	auth    escape.Authenticator
	spinner spinner.Model

	authenticating bool
	failed         bool
	unlocked       bool
}

func New(status Status, auth escape.Authenticator) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{status: status, auth: auth, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() != escapeChord || m.authenticating {
			// A kiosk swallows everything else.
			return m, nil
		}
		m.authenticating = true
		m.failed = false
		return m, tea.Batch(m.spinner.Tick, m.authenticate())

	case authResultMsg:
		m.authenticating = false
		if bool(msg) {
			m.unlocked = true
			return m, tea.Quit
		}
		m.failed = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// authenticate runs the blocking admin prompt off the update loop.
func (m Model) authenticate() tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		return authResultMsg(auth.Authenticate(context.Background()))
	}
}

// Unlocked reports whether the operator authenticated successfully.
func (m Model) Unlocked() bool {
	return m.unlocked
}

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3)
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("marquee · kiosk active"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("content"), m.status.Locator)
	fmt.Fprintf(&b, "%s %s via %s\n", dimStyle.Render("playing"), m.status.Kind, m.status.Player)
	if m.status.Locked {
		fmt.Fprintf(&b, "%s desktop shell locked\n", dimStyle.Render("lockdown"))
	}
	b.WriteString("\n")

	switch {
	case m.authenticating:
		fmt.Fprintf(&b, "%s waiting for administrator authentication…\n", m.spinner.View())
	case m.failed:
		b.WriteString(failStyle.Render("Authentication failed, try again.") + "\n")
		fmt.Fprintf(&b, "%s to unlock\n", dimStyle.Render(escapeChord))
	default:
		fmt.Fprintf(&b, "%s to unlock\n", dimStyle.Render(escapeChord))
	}

	return frameStyle.Render(b.String())
}

// Run shows the overlay until the operator authenticates. The returned bool
// reports whether the exit was an authenticated escape (as opposed to the
// program being torn down externally).
func Run(status Status, auth escape.Authenticator) (bool, error) {
	p := tea.NewProgram(New(status, auth), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("running overlay: %w", err)
	}
	model, ok := final.(Model)
	return ok && model.Unlocked(), nil
}
