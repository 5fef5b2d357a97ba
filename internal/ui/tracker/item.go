package tracker

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/theme"
	qtracker "github.com/nhle/questlog/internal/tracker"
)

// QuestItem is a quest header row.
type QuestItem struct {
	Row qtracker.Row
}

// FilterValue returns the string used for fuzzy filtering.
func (i QuestItem) FilterValue() string { return i.Row.Name }

// TaskItem is a task line under an expanded quest.
type TaskItem struct {
	QuestID string
	Task    quest.TaskView
	CanEdit bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Name }

// SubquestItem is a subquest line under an expanded quest.
type SubquestItem struct {
	ParentID string
	Sub      quest.SubquestView
}

// FilterValue returns the string used for fuzzy filtering.
func (i SubquestItem) FilterValue() string { return i.Sub.Name }

// flatten turns rows into list items, expanding tasks and subquests.
func flatten(rows []qtracker.Row) []list.Item {
	var items []list.Item
	for _, r := range rows {
		items = append(items, QuestItem{Row: r})
		for _, t := range r.Tasks {
			items = append(items, TaskItem{QuestID: r.ID, Task: t, CanEdit: r.CanEdit})
		}
		for _, s := range r.Subquests {
			items = append(items, SubquestItem{ParentID: r.ID, Sub: s})
		}
	}
	return items
}

// ItemDelegate implements list.ItemDelegate for tracker rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single tracker line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	var line string
	switch it := item.(type) {
	case QuestItem:
		line = renderQuest(it.Row)
	case TaskItem:
		line = renderTask(it)
	case SubquestItem:
		line = renderSubquest(it)
	default:
		return
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

func renderQuest(r qtracker.Row) string {
	fold := "▾"
	if r.Collapsed {
		fold = "▸"
	}

	var badges []string
	if r.IsPrimary {
		badges = append(badges, theme.Badge("★", theme.ColorYellow))
	}
	if r.IsGM {
		switch {
		case r.IsPersonal:
			badges = append(badges, theme.Badge("personal", theme.ColorMagenta))
		case r.IsHidden:
			badges = append(badges, theme.Badge("hidden", theme.ColorOrange))
		}
	}

	name := lipgloss.NewStyle().Bold(true).Render(r.Name)
	if r.IsInactive || r.IsHidden {
		name = theme.DimmedStyle.Render(r.Name)
	}

	progress := ""
	if r.TasksTotal > 0 {
		progress = theme.DimmedStyle.Render(fmt.Sprintf(" %d/%d", r.TasksDone, r.TasksTotal))
	}

	source := ""
	if r.Source != "" {
		source = theme.DimmedStyle.Render(" · " + r.Source)
	}

	return strings.TrimSpace(fmt.Sprintf("%s %s%s%s %s", fold, name, progress, source, strings.Join(badges, "")))
}

func renderTask(it TaskItem) string {
	style, box := theme.TaskStyle(it.Task.State)
	line := "  " + box + " " + style.Render(it.Task.Name)
	if it.Task.Hidden {
		line += theme.Badge("hidden", theme.ColorOrange)
	}
	if !it.CanEdit {
		line = theme.DimmedStyle.Render(line)
	}
	return line
}

func renderSubquest(it SubquestItem) string {
	return "  ↳ " + it.Sub.Name + theme.StatusStyle(it.Sub.Status).Render(string(it.Sub.Status))
}
