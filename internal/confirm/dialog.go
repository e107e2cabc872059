// Package confirm asks the user to confirm an action, either with a
// full-screen dialog or a line prompt.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/amonks/recur/project"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	borderASCII = lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	dialogStyle   = lipgloss.NewStyle().Border(borderASCII).BorderForeground(lipgloss.Color("33")).Padding(1, 2)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
)

const messageWidth = 48

type keyMap struct {
	Toggle  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Yes     key.Binding
	No      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("left", "right", "tab", "shift+tab", "h", "l"),
			key.WithHelp("tab", "switch"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c", "q"),
			key.WithHelp("esc", "cancel"),
		),
		Yes: key.NewBinding(key.WithKeys("y")),
		No:  key.NewBinding(key.WithKeys("n")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Confirm, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type model struct {
	prompt    project.Prompt
	keys      keyMap
	help      help.Model
	selected  int
	confirmed bool
	width     int
	height    int
}

func newModel(prompt project.Prompt) model {
	if prompt.Confirm == "" {
		prompt.Confirm = "OK"
	}
	if prompt.Cancel == "" {
		prompt.Cancel = "Cancel"
	}
	return model{prompt: prompt, keys: defaultKeyMap(), help: help.New()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Toggle):
			m.selected = 1 - m.selected
			return m, nil
		case key.Matches(msg, m.keys.Confirm):
			return m.resolve(m.selected == 0)
		case key.Matches(msg, m.keys.Yes):
			return m.resolve(true)
		case key.Matches(msg, m.keys.No), key.Matches(msg, m.keys.Cancel):
			return m.resolve(false)
		}
	}
	return m, nil
}

func (m model) resolve(confirm bool) (tea.Model, tea.Cmd) {
	m.confirmed = confirm
	return m, tea.Quit
}

func (m model) View() string {
	options := []string{m.prompt.Confirm, m.prompt.Cancel}
	buttons := make([]string, 0, len(options))
	for i, option := range options {
		style := buttonStyle
		if i == m.selected {
			style = selectedStyle
		}
		buttons = append(buttons, style.Render("["+option+"]"))
	}

	message := lipgloss.NewStyle().Width(messageWidth).Render(m.prompt.Message)
	parts := []string{}
	if m.prompt.Title != "" {
		parts = append(parts, titleStyle.Render(m.prompt.Title), "")
	}
	parts = append(parts, message, "", strings.Join(buttons, " "), "", m.help.View(m.keys))
	dialog := dialogStyle.Render(strings.Join(parts, "\n"))

	if m.width == 0 || m.height == 0 {
		return dialog
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

// Dialog shows a full-screen confirmation dialog on a terminal.
type Dialog struct {
	In  io.Reader
	Out io.Writer
}

// Confirm runs the dialog until the user picks a button.
func (d Dialog) Confirm(ctx context.Context, prompt project.Prompt) (bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if d.In != nil {
		opts = append(opts, tea.WithInput(d.In))
	}
	if d.Out != nil {
		opts = append(opts, tea.WithOutput(d.Out))
	}

	final, err := tea.NewProgram(newModel(prompt), opts...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return false, context.Canceled
		}
		return false, fmt.Errorf("run dialog: %w", err)
	}
	m, ok := final.(model)
	if !ok {
		return false, fmt.Errorf("run dialog: unexpected model %T", final)
	}
	return m.confirmed, nil
}
