// Package tracker renders the quest tracker panel.
package tracker

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/questlog/internal/keys"
	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/settings"
	"github.com/nhle/questlog/internal/theme"
	qtracker "github.com/nhle/questlog/internal/tracker"
)

// RowsLoadedMsg carries a fresh tracker snapshot.
type RowsLoadedMsg struct {
	Rows []qtracker.Row
}

// SelectedQuestMsg is sent when the user opens a quest.
type SelectedQuestMsg struct {
	QuestID string
}

// TaskToggledMsg reports the result of a task click.
type TaskToggledMsg struct {
	QuestID string
	Outcome quest.Outcome
	Err     error
}

// Model is the tracker panel.
type Model struct {
	list    list.Model
	tracker *qtracker.Tracker
	db      *quest.DB
	keys    *keys.KeyMap
	pos     settings.Position
	primary bool
}

// New creates a tracker panel sized from the tracker's saved position.
func New(tr *qtracker.Tracker, db *quest.DB, k *keys.KeyMap) Model {
	pos := tr.Position()
	l := list.New([]list.Item{}, ItemDelegate{}, pos.Width, pos.Height)
	l.Title = "Quests"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:    l,
		tracker: tr,
		db:      db,
		keys:    k,
		pos:     pos,
		primary: tr.ShowOnlyPrimary(),
	}
}

// Init returns a command that loads the tracker rows.
func (m Model) Init() tea.Cmd {
	return m.LoadRows()
}

// Update handles messages for the tracker panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RowsLoadedMsg:
		m.list.Title = "Quests"
		if m.primary {
			m.list.Title = "Primary Quest"
		}
		cmd := m.list.SetItems(flatten(msg.Rows))
		return m, cmd

	case TaskToggledMsg:
		return m, m.LoadRows()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if id := m.SelectedQuestID(); id != "" {
			return m, func() tea.Msg { return SelectedQuestMsg{QuestID: id} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Collapse):
		if it, ok := m.list.SelectedItem().(QuestItem); ok {
			m.tracker.ToggleCollapsed(it.Row.ID)
			return m, m.LoadRows()
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.list.SelectedItem().(TaskItem); ok && it.CanEdit {
			return m, m.toggleTask(it.QuestID, it.Task.Index)
		}
		return m, nil

	case key.Matches(msg, m.keys.PrimaryOnly):
		m.primary = m.tracker.ToggleShowOnlyPrimary()
		return m, m.LoadRows()

	case key.Matches(msg, m.keys.Wider):
		m.resize(2, 0)
		return m, nil
	case key.Matches(msg, m.keys.Narrower):
		m.resize(-2, 0)
		return m, nil
	case key.Matches(msg, m.keys.Taller):
		m.resize(0, 1)
		return m, nil
	case key.Matches(msg, m.keys.Shorter):
		m.resize(0, -1)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// resize moves the panel edges and lets the tracker clamp and persist.
func (m *Model) resize(dw, dh int) {
	want := m.pos
	want.Width += dw
	want.Height += dh
	m.pos = m.tracker.SetPosition(want, m.contentHeight())
	m.list.SetSize(m.pos.Width, m.pos.Height)
}

// contentHeight is the height the panel needs to show every line.
func (m Model) contentHeight() int {
	return len(m.list.Items()) + 3
}

func (m Model) toggleTask(questID string, index int) tea.Cmd {
	tr, db := m.tracker, m.db
	return func() tea.Msg {
		db.Lock()
		defer db.Unlock()
		out, err := tr.HandleTaskClick(context.Background(), questID, index)
		return TaskToggledMsg{QuestID: questID, Outcome: out, Err: err}
	}
}

// LoadRows returns a tea.Cmd that snapshots the tracker rows.
func (m Model) LoadRows() tea.Cmd {
	tr, db := m.tracker, m.db
	return func() tea.Msg {
		db.Lock()
		defer db.Unlock()
		return RowsLoadedMsg{Rows: tr.Rows()}
	}
}

// SelectedQuestID returns the quest under the cursor. Task and subquest
// lines resolve to the quest they belong to or point at.
func (m Model) SelectedQuestID() string {
	switch it := m.list.SelectedItem().(type) {
	case QuestItem:
		return it.Row.ID
	case TaskItem:
		return it.QuestID
	case SubquestItem:
		return it.Sub.ID
	}
	return ""
}

// SelectedTask returns the task under the cursor, if any.
func (m Model) SelectedTask() (questID string, index int, ok bool) {
	it, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return "", 0, false
	}
	return it.QuestID, it.Task.Index, true
}

// Position returns the panel geometry.
func (m Model) Position() settings.Position {
	return m.pos
}

// View renders the tracker panel.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return theme.TrackerPanelStyle.Render(m.list.View())
}

func (m Model) renderEmptyState() string {
	text := "No active quests.\n\nPress n to create one."
	if m.primary {
		text = "No primary quest set.\n\nPress * on a quest to pin it."
	}
	return theme.TrackerPanelStyle.Render(
		lipgloss.NewStyle().
			Width(m.pos.Width).
			Height(m.pos.Height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(text),
	)
}
