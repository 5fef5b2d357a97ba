package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/questlog/internal/theme"
)

// Palette command names.
const (
	NewQuest     = "new"
	Delete       = "delete"
	Status       = "status"
	Primary      = "primary"
	Unprimary    = "unprimary"
	Refresh      = "refresh"
	Settings     = "settings"
	TrustedEdit  = "trusted-edit"
	Resizable    = "resizable"
	PrimaryFirst = "primary-default"
	Quit         = "quit"
)

// Names lists the palette commands in the order they are suggested.
var Names = []string{
	NewQuest, Delete, Status, Primary, Unprimary, Refresh, Settings,
	TrustedEdit, Resizable, PrimaryFirst, Quit,
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Args []string
}

// Parse splits a palette line into a command name and its arguments.
// The name is lower-cased; arguments keep their case.
func Parse(line string) CommandMsg {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandMsg{}
	}
	return CommandMsg{Name: strings.ToLower(fields[0]), Args: fields[1:]}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "new, status active, primary, trusted-edit on..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Names)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			parsed := Parse(m.input.Value())
			m.input.Reset()
			if parsed.Name != "" {
				return m, func() tea.Msg {
					return parsed
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
