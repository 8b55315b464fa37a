// Package prompt asks the user whether notifications may be shown.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNoAnswer is returned when the user leaves the prompt without deciding.
var ErrNoAnswer = errors.New("permission prompt dismissed without an answer")

// Prompter decides whether appName may show notifications. It returns
// ErrNoAnswer when the user defers the decision.
type Prompter interface {
	Prompt(ctx context.Context, appName string) (bool, error)
}

// Always answers every prompt with the same value.
type Always bool

// Prompt implements Prompter.
func (a Always) Prompt(context.Context, string) (bool, error) {
	return bool(a), nil
}

// TUI asks interactively on a terminal.
type TUI struct {
	In  io.Reader
	Out io.Writer
}

// Prompt runs the yes/no dialog until the user answers or quits. Quitting
// returns ErrNoAnswer.
func (t TUI) Prompt(ctx context.Context, appName string) (bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.In != nil {
		opts = append(opts, tea.WithInput(t.In))
	}
	if t.Out != nil {
		opts = append(opts, tea.WithOutput(t.Out))
	}

	p := tea.NewProgram(newModel(appName), opts...)
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("error running permission prompt: %w", err)
	}
	m, ok := final.(model)
	if !ok {
		return false, fmt.Errorf("unexpected prompt model %T", final)
	}
	return m.result()
}

// --- Model ---

type keyMap struct {
	Allow key.Binding
	Deny  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Allow: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "allow")),
	Deny:  key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "block")),
	Quit:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q", "decide later")),
}

type model struct {
	appName  string
	granted  bool
	answered bool
}

func newModel(appName string) model {
	return model{appName: appName}
}

func (m model) result() (bool, error) {
	if !m.answered {
		return false, ErrNoAnswer
	}
	return m.granted, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Allow):
			m.granted, m.answered = true, true
			return m, tea.Quit
		case key.Matches(msg, keys.Deny):
			m.granted, m.answered = false, true
			return m, tea.Quit
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		}
	}
	return m, nil
}

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle      = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m model) View() string {
	if m.answered {
		return ""
	}
	help := fmt.Sprintf("%s: %s • %s: %s • %s: %s",
		keys.Allow.Help().Key, keys.Allow.Help().Desc,
		keys.Deny.Help().Key, keys.Deny.Help().Desc,
		keys.Quit.Help().Key, keys.Quit.Help().Desc,
	)
	return boxStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			questionStyle.Render(fmt.Sprintf("Allow %s to show desktop notifications?", m.appName)),
			helpStyle.Render(help),
		),
	) + "\n"
}
