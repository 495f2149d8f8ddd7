package feed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	invalidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// TerminalPrompter asks on the terminal with a one-line text input. Nil In/Out
// mean the process's stdin/stdout.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p TerminalPrompter) Prompt(ctx context.Context, message string, validate func(string) error) (string, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(newPromptModel(message, validate), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}

	m, ok := final.(promptModel)
	if !ok || m.canceled {
		return "", ErrPromptCanceled
	}
	return m.value, nil
}

// promptModel is a bubbletea model for a single validated answer.
type promptModel struct {
	message  string
	input    textinput.Model
	validate func(string) error

	err      error
	value    string
	done     bool
	canceled bool
}

func newPromptModel(message string, validate func(string) error) promptModel {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "https://"
	in.Focus()

	if validate == nil {
		validate = func(string) error { return nil }
	}
	return promptModel{message: message, input: in, validate: validate}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			v := strings.TrimSpace(m.input.Value())
			if err := m.validate(v); err != nil {
				m.err = err
				return m, nil
			}
			m.value = v
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		}
		m.err = nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	q := questionStyle.Render("? " + m.message)
	switch {
	case m.done:
		return q + " " + answerStyle.Render(m.value) + "\n"
	case m.canceled:
		return q + "\n"
	}

	s := q + " " + m.input.View()
	if m.err != nil {
		s += "\n" + invalidStyle.Render(m.err.Error())
	}
	return s + "\n"
}
