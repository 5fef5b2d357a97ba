// Package questform holds the huh forms that create quests, tasks and rewards.
package questform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/theme"
)

// QuestSubmittedMsg is dispatched when the new quest form is completed.
type QuestSubmittedMsg struct {
	Options quest.CreateOptions
}

// TaskSubmittedMsg is dispatched when the add task form is completed.
type TaskSubmittedMsg struct {
	QuestID string
	Record  model.TaskRecord
}

// RewardSubmittedMsg is dispatched when the add reward form is completed.
type RewardSubmittedMsg struct {
	QuestID string
	Record  model.RewardRecord
}

// CancelMsg is dispatched when the user aborts a form.
type CancelMsg struct{}

// ParentOption is a quest offered as a parent in the new quest form.
type ParentOption struct {
	ID   string
	Name string
}

type mode int

const (
	modeQuest mode = iota
	modeTask
	modeReward
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	giverName   string
	description string
	status      string
	parent      string

	rewardType string
	img        string
	hidden     bool
}

// Model is the Bubble Tea model for the quest forms.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	mode    mode
	questID string
	parents []ParentOption
	width   int
	height  int
}

// New creates a new form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetParents sets the quests offered in the parent selector.
func (m *Model) SetParents(parents []ParentOption) {
	m.parents = parents
}

// StartQuest initializes the form for a new quest, optionally under parent.
func (m *Model) StartQuest(parent string) tea.Cmd {
	*m.fb = formBindings{status: string(model.StatusInactive), parent: parent}
	m.mode = modeQuest
	m.questID = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder(model.DefaultQuestName).
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Giver").
				Placeholder("Who hands out this quest? (optional)").
				Value(&m.fb.giverName),
			huh.NewText().
				Title("Description").
				Placeholder("Markdown is supported").
				Value(&m.fb.description),
			m.statusField(),
			m.parentField(),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// StartTask initializes the form for a new task on questID.
func (m *Model) StartTask(questID string) tea.Cmd {
	*m.fb = formBindings{}
	m.mode = modeTask
	m.questID = questID
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Objective").
				Value(&m.fb.name).
				Validate(validateRequired("Objective")),
			huh.NewConfirm().
				Title("Hidden from players?").
				Value(&m.fb.hidden),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// StartReward initializes the form for a new reward on questID.
func (m *Model) StartReward(questID string) tea.Cmd {
	*m.fb = formBindings{rewardType: model.RewardTypeAbstract}
	m.mode = modeReward
	m.questID = questID
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Abstract", model.RewardTypeAbstract),
					huh.NewOption("Item", model.RewardTypeItem),
				).
				Value(&m.fb.rewardType),
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Image").
				Placeholder("icons/svg/item-bag.svg").
				Value(&m.fb.img).
				Validate(validateRequired("Image")),
			huh.NewConfirm().
				Title("Hidden from players?").
				Value(&m.fb.hidden),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// Update handles messages for the active form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the active form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Quest"
	switch m.mode {
	case modeTask:
		titleText = "Add Objective"
	case modeReward:
		titleText = "Add Reward"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) statusField() huh.Field {
	opts := make([]huh.Option[string], len(model.Statuses))
	for i, s := range model.Statuses {
		opts[i] = huh.NewOption(strings.ToUpper(string(s[:1]))+string(s[1:]), string(s))
	}
	return huh.NewSelect[string]().
		Title("Status").
		Options(opts...).
		Value(&m.fb.status)
}

func (m *Model) parentField() huh.Field {
	opts := []huh.Option[string]{huh.NewOption("None", "")}
	for _, p := range m.parents {
		opts = append(opts, huh.NewOption(p.Name, p.ID))
	}
	return huh.NewSelect[string]().
		Title("Parent quest").
		Options(opts...).
		Value(&m.fb.parent)
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	questID := m.questID

	switch m.mode {
	case modeTask:
		rec := model.TaskRecord{Name: strings.TrimSpace(fb.name), Hidden: fb.hidden}
		return func() tea.Msg { return TaskSubmittedMsg{QuestID: questID, Record: rec} }

	case modeReward:
		rec := model.RewardRecord{
			Type:   fb.rewardType,
			Data:   map[string]any{"name": strings.TrimSpace(fb.name), "img": strings.TrimSpace(fb.img)},
			Hidden: fb.hidden,
		}
		return func() tea.Msg { return RewardSubmittedMsg{QuestID: questID, Record: rec} }
	}

	opts := quest.CreateOptions{
		Name:        strings.TrimSpace(fb.name),
		Status:      model.Status(fb.status),
		GiverName:   strings.TrimSpace(fb.giverName),
		Description: fb.description,
		Parent:      fb.parent,
	}
	if opts.GiverName != "" {
		opts.Giver = model.GiverAbstract
	}
	return func() tea.Msg { return QuestSubmittedMsg{Options: opts} }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
