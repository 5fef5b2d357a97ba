// Package preview shows a single quest with its description, tasks,
// rewards and subquests.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/questlog/internal/keys"
	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/theme"
)

// BackMsg signals the parent to navigate back to the tracker.
type BackMsg struct{}

// LoadedMsg carries the enriched quest to show.
type LoadedMsg struct {
	Quest quest.Enriched
}

// ActionMsg asks the parent to act on the previewed quest.
type ActionMsg struct {
	Action  string
	QuestID string
	Index   int
}

// Preview actions.
const (
	ActionToggleTask  = "toggle-task"
	ActionAddTask     = "add-task"
	ActionAddReward   = "add-reward"
	ActionCycleStatus = "cycle-status"
	ActionDelete      = "delete"
	ActionSetPrimary  = "set-primary"
)

// Model is the quest preview.
type Model struct {
	quest    *quest.Enriched
	viewport viewport.Model
	renderer *glamour.TermRenderer
	keys     *keys.KeyMap
	width    int
	height   int
	cursor   int
	focused  bool
}

// New creates a preview sized width x height.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		renderer: newRenderer(width),
		keys:     k,
		width:    width,
		height:   height,
	}
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-8, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

// Init returns the initial command for the preview.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the preview.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		sameQuest := m.quest != nil && m.quest.ID == msg.Quest.ID
		q := msg.Quest
		m.quest = &q
		if !sameQuest {
			m.cursor = 0
			m.viewport.GotoTop()
		}
		m.cursor = min(m.cursor, max(len(q.Tasks)-1, 0))
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		if m.quest == nil {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Down) && len(m.quest.Tasks) > 0:
			m.cursor = min(m.cursor+1, len(m.quest.Tasks)-1)
			m.viewport.SetContent(m.renderContent())
			return m, nil

		case key.Matches(msg, m.keys.Up) && len(m.quest.Tasks) > 0:
			m.cursor = max(m.cursor-1, 0)
			m.viewport.SetContent(m.renderContent())
			return m, nil

		case key.Matches(msg, m.keys.Toggle) && len(m.quest.Tasks) > 0:
			return m, m.action(ActionToggleTask, m.quest.Tasks[m.cursor].Index)

		case key.Matches(msg, m.keys.AddTask):
			return m, m.action(ActionAddTask, 0)

		case key.Matches(msg, m.keys.AddReward):
			return m, m.action(ActionAddReward, 0)

		case key.Matches(msg, m.keys.CycleState):
			return m, m.action(ActionCycleStatus, 0)

		case key.Matches(msg, m.keys.Delete):
			return m, m.action(ActionDelete, 0)

		case key.Matches(msg, m.keys.SetPrimary):
			return m, m.action(ActionSetPrimary, 0)
		}
	}

	// Delegate to viewport for scrolling (pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string, index int) tea.Cmd {
	id := m.quest.ID
	return func() tea.Msg {
		return ActionMsg{Action: name, QuestID: id, Index: index}
	}
}

// QuestID returns the previewed quest, or an empty string.
func (m Model) QuestID() string {
	if m.quest == nil {
		return ""
	}
	return m.quest.ID
}

// Focused reports whether a refresh should bring this preview forward.
func (m Model) Focused() bool {
	return m.focused
}

// SetFocused marks the preview as brought to the front.
func (m *Model) SetFocused(v bool) {
	m.focused = v
}

// Clear drops the previewed quest.
func (m *Model) Clear() {
	m.quest = nil
	m.cursor = 0
}

// View renders the preview.
func (m Model) View() string {
	if m.quest == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No quest selected")
	}
	return theme.DetailPanelStyle.Width(m.width - 4).Render(m.viewport.View())
}

// renderContent builds the preview text for the viewport.
func (m Model) renderContent() string {
	if m.quest == nil {
		return ""
	}
	q := m.quest
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(q.Name))

	badges := []string{theme.StatusStyle(q.Status).Render(string(q.Status))}
	if q.IsGM && q.IsPersonal {
		badges = append(badges, theme.Badge("personal", theme.ColorMagenta))
	}
	if q.IsGM && q.IsHidden {
		badges = append(badges, theme.Badge("hidden", theme.ColorOrange))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	if q.Giver.Name != "" {
		sections = append(sections, fmt.Sprintf("%s  %s", metaStyle.Render("Giver:"), q.Giver.Name))
	}
	if q.ParentName != "" {
		sections = append(sections, fmt.Sprintf("%s %s", metaStyle.Render("Parent:"), q.ParentName))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(max(m.width-8, 1), 80)))
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	sections = append(sections, "", separator, "")
	sections = append(sections, m.renderMarkdown(q.Description, "No description"))

	if len(q.Tasks) > 0 {
		sections = append(sections, header.Render(fmt.Sprintf("Objectives (%d/%d)", q.TasksDone, q.TasksTotal)))
		for i, t := range q.Tasks {
			style, box := theme.TaskStyle(t.State)
			line := box + " " + style.Render(t.Name)
			if t.Hidden {
				line += theme.Badge("hidden", theme.ColorOrange)
			}
			if i == m.cursor {
				line = theme.SelectedItemStyle.Render(line)
			} else {
				line = theme.ListItemStyle.Render(line)
			}
			sections = append(sections, line)
		}
		sections = append(sections, "")
	}

	if len(q.Rewards) > 0 {
		sections = append(sections, header.Render("Rewards"))
		for _, r := range q.Rewards {
			line := "• " + r.Name
			if r.Name == "" {
				line = "• " + r.Type
			}
			if r.Hidden {
				line += theme.Badge("hidden", theme.ColorOrange)
			}
			sections = append(sections, theme.ListItemStyle.Render(line))
		}
		sections = append(sections, "")
	}

	if len(q.Subquests) > 0 {
		sections = append(sections, header.Render("Subquests"))
		for _, s := range q.Subquests {
			sections = append(sections, theme.ListItemStyle.Render(
				"↳ "+s.Name+theme.StatusStyle(s.Status).Render(string(s.Status))))
		}
		sections = append(sections, "")
	}

	if q.IsGM && q.GMNotes != "" {
		sections = append(sections, separator, header.Render("GM Notes"))
		sections = append(sections, m.renderMarkdown(q.GMNotes, ""))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMarkdown renders text with glamour, falling back to plain text.
func (m Model) renderMarkdown(text, empty string) string {
	if strings.TrimSpace(text) == "" {
		return lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render(empty)
	}
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// SetSize updates the preview dimensions.
func (m *Model) SetSize(width, height int) {
	if width != m.width {
		m.renderer = newRenderer(width)
	}
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
