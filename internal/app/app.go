package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/keys"
	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/notify"
	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/settings"
	"github.com/nhle/questlog/internal/tracker"
	"github.com/nhle/questlog/internal/ui"
	"github.com/nhle/questlog/internal/ui/command"
	configview "github.com/nhle/questlog/internal/ui/config"
	helpview "github.com/nhle/questlog/internal/ui/help"
	"github.com/nhle/questlog/internal/ui/preview"
	"github.com/nhle/questlog/internal/ui/questform"
	trackerview "github.com/nhle/questlog/internal/ui/tracker"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewTracker ViewState = iota
	ViewPreview
	ViewHelp
	ViewCommand
	ViewForm
	ViewConfig
)

// Deps are the services the UI drives.
type Deps struct {
	DB          *quest.DB
	Settings    *settings.Settings
	Tracker     *tracker.Tracker
	Broadcaster *notify.Broadcaster
	Poller      *notify.Poller
	Logger      *zap.Logger
}

// ConfigChangedMsg carries a configuration re-read after the file changed.
type ConfigChangedMsg struct {
	Config *model.AppConfig
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the quest services.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	deps         Deps
	logger       *zap.Logger
	keys         *keys.KeyMap
	trackerView  trackerview.Model
	preview      preview.Model
	helpView     helpview.Model
	commandView  command.Model
	formView     questform.Model
	configView   configview.Model
	ready        bool
	statusMsg    string
}

// New creates a new root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return Model{
		currentView: ViewTracker,
		deps:        d,
		logger:      logger,
		keys:        k,
		trackerView: trackerview.New(d.Tracker, d.DB, k),
		preview:     preview.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		formView:    questform.New(80, 24),
		configView:  configview.New(d.Settings, 80, 24),
	}
}

// Init loads the tracker rows and starts listening for other clients.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.trackerView.Init()}
	if m.deps.Poller != nil {
		cmds = append(cmds, m.deps.Poller.Start(context.Background()))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resizePanes()
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case ConfigChangedMsg:
		m.deps.Tracker.SetBounds(msg.Config.Tracker)
		m.logger.Info("tracker bounds reloaded",
			zap.Int("min_width", msg.Config.Tracker.MinWidth),
			zap.Int("max_width", msg.Config.Tracker.MaxWidth))
		return m, nil

	case notify.RefreshMsg:
		return m, tea.Batch(m.handleRefresh(msg), m.deps.Poller.WaitForNext())

	case notify.ErrorMsg:
		m.statusMsg = "sync: " + msg.Err.Error()
		return m, m.deps.Poller.WaitForNext()

	case refreshedMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		}
		if msg.focus && msg.questID == m.preview.QuestID() {
			m.preview.SetFocused(true)
			m.currentView = ViewPreview
		}
		return m, m.afterChange(msg.questID)

	case trackerview.RowsLoadedMsg:
		var cmd tea.Cmd
		m.trackerView, cmd = m.trackerView.Update(msg)
		m.resizePanes()
		return m, cmd

	case trackerview.SelectedQuestMsg:
		m.previousView = ViewTracker
		m.currentView = ViewPreview
		return m, m.openQuest(msg.QuestID)

	case trackerview.TaskToggledMsg:
		m.reportOutcome("task", msg.Outcome, msg.Err)
		var cmd tea.Cmd
		m.trackerView, cmd = m.trackerView.Update(msg)
		return m, tea.Batch(cmd, m.reloadPreview(msg.QuestID))

	case preview.LoadedMsg:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd

	case preview.BackMsg:
		m.preview.SetFocused(false)
		m.currentView = ViewTracker
		return m, nil

	case preview.ActionMsg:
		return m.handlePreviewAction(msg)

	case questform.QuestSubmittedMsg:
		m.currentView = m.previousView
		return m, m.createQuest(msg.Options)

	case questform.TaskSubmittedMsg:
		m.currentView = ViewPreview
		return m, m.addTask(msg.QuestID, msg.Record)

	case questform.RewardSubmittedMsg:
		m.currentView = ViewPreview
		return m, m.addReward(msg.QuestID, msg.Record)

	case questform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case questChangedMsg:
		m.reportOutcome(msg.action, msg.outcome, msg.err)
		if msg.deleted && msg.questID == m.preview.QuestID() {
			m.preview.Clear()
			m.currentView = ViewTracker
		}
		if msg.openPreview && msg.err == nil {
			m.currentView = ViewPreview
			return m, tea.Batch(m.afterChange(msg.questID), m.openQuest(msg.questID))
		}
		return m, m.afterChange(msg.questID)

	case configview.SettingsSavedMsg:
		var cmd tea.Cmd
		m.configView, cmd = m.configView.Update(msg)
		if msg.Err != nil {
			return m, cmd
		}
		b := m.deps.Broadcaster
		broadcast := func() tea.Msg {
			b.RefreshAll(context.Background())
			return nil
		}
		return m, tea.Batch(cmd, broadcast, m.afterChange(""))

	case configview.ConfigDoneMsg:
		m.currentView = ViewTracker
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case tea.KeyMsg:
		// Global keys that work regardless of current view
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit

		case "q":
			if m.currentView == ViewTracker {
				m.shutdown()
				return m, tea.Quit
			}

		case "?":
			if m.currentView == ViewForm || m.currentView == ViewConfig {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case ":":
			if m.currentView == ViewForm || m.currentView == ViewConfig {
				break
			}
			if m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			cmd := m.commandView.Focus()
			return m, cmd

		case "esc":
			if m.currentView == ViewHelp || m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}

		case "r":
			if m.currentView == ViewTracker {
				return m, m.reloadAll()
			}

		case "n":
			if m.currentView == ViewTracker {
				cmd := m.startNewQuest("")
				return m, cmd
			}

		case "c":
			if m.currentView == ViewTracker {
				cmd := m.openSettings()
				return m, cmd
			}

		case "*":
			if m.currentView == ViewTracker {
				if id := m.trackerView.SelectedQuestID(); id != "" {
					return m, m.setPrimary(id)
				}
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewTracker:
		m.trackerView, cmd = m.trackerView.Update(msg)
	case ViewPreview:
		m.preview, cmd = m.preview.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewConfig:
		m.configView, cmd = m.configView.Update(msg)
	}

	return m, cmd
}

// resizePanes fits every pane to the space beside the tracker.
func (m *Model) resizePanes() {
	if !m.ready {
		return
	}
	w := m.layout.MainWidth(m.trackerView.Position())
	h := m.layout.ContentHeight()
	m.preview.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
	m.formView.SetSize(w, h)
	m.configView.SetSize(w, h)
}

// shutdown stops background work and flushes the pending position write.
func (m Model) shutdown() {
	if m.deps.Poller != nil {
		m.deps.Poller.Stop()
	}
	m.deps.Tracker.Close()
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	user := m.deps.DB.User()
	header := m.layout.RenderHeader("Quest Log", fmt.Sprintf("%s (%s)", user.Name, user.Role))
	content := m.layout.RenderPanels(m.trackerView.View(), m.trackerView.Position(), m.renderMain())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderMain returns the pane shown beside the tracker.
func (m Model) renderMain() string {
	switch m.currentView {
	case ViewPreview:
		return m.preview.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewForm:
		return m.formView.View()
	case ViewConfig:
		return m.configView.View()
	default:
		if m.preview.QuestID() != "" {
			return m.preview.View()
		}
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close command | enter execute | esc back"
	case ViewPreview:
		return "esc back | space toggle | t task | w reward | s status | * primary | D delete"
	case ViewForm:
		return "enter submit | esc cancel"
	case ViewConfig:
		return "e edit | esc back"
	default:
		return "q quit | ? help | n new | enter open | tab expand | space toggle | p primary only | c settings"
	}
}

// reportOutcome turns an operation result into a status bar message.
func (m *Model) reportOutcome(action string, out quest.Outcome, err error) {
	switch {
	case err != nil:
		m.statusMsg = fmt.Sprintf("%s failed: %v", action, err)
		m.logger.Warn("quest action failed", zap.String("action", action), zap.Error(err))
	case out.Skipped():
		m.statusMsg = fmt.Sprintf("%s not saved (%s)", action, out)
	default:
		m.statusMsg = ""
	}
}
