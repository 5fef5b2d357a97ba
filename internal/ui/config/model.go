// Package config is the game master's editor for the world settings
// shared by every client.
package config

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/questlog/internal/settings"
	"github.com/nhle/questlog/internal/theme"
)

// ConfigMode represents the current state of the settings view.
type ConfigMode int

const (
	ModeList ConfigMode = iota // Show current values
	ModeForm                   // Editing
)

// ConfigDoneMsg signals the settings view should close.
type ConfigDoneMsg struct{}

// SettingsSavedMsg is sent after the world settings were written.
type SettingsSavedMsg struct {
	Err error
}

// QuestOption is a quest offered as the primary quest.
type QuestOption struct {
	ID   string
	Name string
}

// values holds form field values on the heap so huh's pointers survive
// Bubble Tea model copies.
type values struct {
	trustedEdit    bool
	resizable      bool
	primaryDefault bool
	primary        string
}

// Model is the Bubble Tea model for the world settings view.
type Model struct {
	mode     ConfigMode
	settings *settings.Settings
	form     *huh.Form
	v        *values
	quests   []QuestOption

	statusMsg     string
	width, height int
}

// New creates a settings view over st.
func New(st *settings.Settings, width, height int) Model {
	return Model{
		mode:     ModeList,
		settings: st,
		v:        &values{},
		width:    width,
		height:   height,
	}
}

// Open shows the current values with quests as primary candidates.
func (m *Model) Open(quests []QuestOption) {
	m.quests = quests
	m.mode = ModeList
	m.statusMsg = ""
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SettingsSavedMsg:
		m.mode = ModeList
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.Err)
		} else {
			m.statusMsg = "Settings saved"
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeList {
			switch msg.String() {
			case "e", "enter":
				m.mode = ModeForm
				m.form = m.buildForm()
				return m, m.form.Init()
			case "esc", "q":
				return m, func() tea.Msg { return ConfigDoneMsg{} }
			}
			return m, nil
		}
	}

	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.save()
	case huh.StateAborted:
		m.mode = ModeList
		return m, nil
	}
	return m, cmd
}

func (m Model) buildForm() *huh.Form {
	m.v.trustedEdit = m.settings.TrustedPlayerEdit()
	m.v.resizable = m.settings.TrackerResizable()
	m.v.primaryDefault = m.settings.ShowOnlyPrimaryDefault()
	m.v.primary = m.settings.PrimaryQuest()

	opts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, q := range m.quests {
		opts = append(opts, huh.NewOption(q.Name, q.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Trusted player edit").
				Description("Owners may edit their quests from the tracker").
				Value(&m.v.trustedEdit),
			huh.NewConfirm().
				Title("Resizable tracker").
				Value(&m.v.resizable),
			huh.NewConfirm().
				Title("Show only the primary quest by default").
				Value(&m.v.primaryDefault),
			huh.NewSelect[string]().
				Title("Primary quest").
				Options(opts...).
				Value(&m.v.primary),
		),
	).WithWidth(m.width - 4).WithShowHelp(true)
}

func (m Model) save() tea.Cmd {
	st, v := m.settings, *m.v
	return func() tea.Msg {
		ctx := context.Background()
		steps := []func() error{
			func() error { return st.SetTrustedPlayerEdit(ctx, v.trustedEdit) },
			func() error { return st.SetTrackerResizable(ctx, v.resizable) },
			func() error { return st.SetShowOnlyPrimaryDefault(ctx, v.primaryDefault) },
			func() error { return st.SetPrimaryQuest(ctx, v.primary) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return SettingsSavedMsg{Err: err}
			}
		}
		return SettingsSavedMsg{}
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the settings view.
func (m Model) View() string {
	if m.mode == ModeForm && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("World Settings"))
	b.WriteString("\n\n")

	primary := "(none)"
	for _, q := range m.quests {
		if q.ID == m.settings.PrimaryQuest() {
			primary = q.Name
		}
	}
	rows := [][2]string{
		{"Trusted player edit", onOff(m.settings.TrustedPlayerEdit())},
		{"Resizable tracker", onOff(m.settings.TrackerResizable())},
		{"Primary only by default", onOff(m.settings.ShowOnlyPrimaryDefault())},
		{"Primary quest", primary},
	}
	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(26)
	for _, r := range rows {
		b.WriteString(label.Render(r[0]))
		b.WriteString(r[1])
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("e edit | esc back"))
	if m.statusMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.DimmedStyle.Render(m.statusMsg))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
