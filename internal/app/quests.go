package app

import (
	"context"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/notify"
	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/ui/command"
	configview "github.com/nhle/questlog/internal/ui/config"
	"github.com/nhle/questlog/internal/ui/preview"
	"github.com/nhle/questlog/internal/ui/questform"
)

// questChangedMsg is sent after a quest operation completes.
type questChangedMsg struct {
	questID     string
	action      string
	outcome     quest.Outcome
	err         error
	deleted     bool
	openPreview bool
}

// refreshedMsg is sent after a notification from another client is applied.
type refreshedMsg struct {
	questID string
	focus   bool
	err     error
}

// withDB runs fn holding the quest index lock.
func (m Model) withDB(fn func(ctx context.Context, db *quest.DB) tea.Msg) tea.Cmd {
	db := m.deps.DB
	return func() tea.Msg {
		db.Lock()
		defer db.Unlock()
		return fn(context.Background(), db)
	}
}

// afterChange reloads the tracker and, when it shows questID, the preview.
func (m Model) afterChange(questID string) tea.Cmd {
	cmds := []tea.Cmd{m.trackerView.LoadRows()}
	if id := m.preview.QuestID(); id != "" && (questID == "" || id == questID) {
		cmds = append(cmds, m.openQuest(id))
	}
	return tea.Batch(cmds...)
}

// openQuest loads the enriched quest into the preview.
func (m Model) openQuest(id string) tea.Cmd {
	return m.withDB(func(_ context.Context, db *quest.DB) tea.Msg {
		q := db.GetQuest(id)
		if q == nil {
			return preview.BackMsg{}
		}
		return preview.LoadedMsg{Quest: q.Enrich(db.User())}
	})
}

// reloadPreview refreshes the preview when it shows questID.
func (m Model) reloadPreview(questID string) tea.Cmd {
	if m.preview.QuestID() != questID {
		return nil
	}
	return m.openQuest(questID)
}

// reloadAll re-reads every quest and the world settings.
func (m Model) reloadAll() tea.Cmd {
	st := m.deps.Settings
	return m.withDB(func(ctx context.Context, db *quest.DB) tea.Msg {
		if err := st.Reload(ctx); err != nil {
			return refreshedMsg{err: err}
		}
		return refreshedMsg{err: db.Load(ctx)}
	})
}

// handleRefresh applies a refresh signal from another client.
func (m Model) handleRefresh(msg notify.RefreshMsg) tea.Cmd {
	if msg.All {
		return m.reloadAll()
	}
	return m.withDB(func(ctx context.Context, db *quest.DB) tea.Msg {
		err := db.Reload(ctx, msg.QuestID)
		return refreshedMsg{questID: msg.QuestID, focus: msg.Focus, err: err}
	})
}

// startNewQuest opens the quest form with the current quests as parents.
func (m *Model) startNewQuest(parent string) tea.Cmd {
	db := m.deps.DB
	db.Lock()
	parents := quest.Transform(
		db.SortCollect(quest.CollectOptions{Observable: true}),
		func(q *quest.Quest) questform.ParentOption {
			return questform.ParentOption{ID: q.ID(), Name: q.Name}
		},
	)
	db.Unlock()

	m.formView.SetParents(parents)
	m.previousView = m.currentView
	m.currentView = ViewForm
	return m.formView.StartQuest(parent)
}

// openSettings shows the world settings editor to privileged users.
func (m *Model) openSettings() tea.Cmd {
	db := m.deps.DB
	if !db.User().IsGM() {
		m.statusMsg = "world settings are for the game master"
		return nil
	}
	db.Lock()
	quests := quest.Transform(
		db.SortCollect(quest.CollectOptions{}),
		func(q *quest.Quest) configview.QuestOption {
			return configview.QuestOption{ID: q.ID(), Name: q.Name}
		},
	)
	db.Unlock()

	m.configView.Open(quests)
	m.currentView = ViewConfig
	return nil
}

func (m Model) createQuest(opts quest.CreateOptions) tea.Cmd {
	b := m.deps.Broadcaster
	return m.withDB(func(ctx context.Context, db *quest.DB) tea.Msg {
		q, err := db.CreateQuest(ctx, opts)
		if err != nil {
			return questChangedMsg{action: "create", outcome: quest.OutcomeFailed, err: err}
		}
		b.RefreshAll(ctx)
		return questChangedMsg{questID: q.ID(), action: "create", openPreview: true}
	})
}

// mutate applies fn to a quest, saves it and tells other clients.
func (m Model) mutate(questID, action string, fn func(q *quest.Quest) error) tea.Cmd {
	b := m.deps.Broadcaster
	return m.withDB(func(ctx context.Context, db *quest.DB) tea.Msg {
		q := db.GetQuest(questID)
		if q == nil {
			return questChangedMsg{questID: questID, action: action, outcome: quest.OutcomeFailed,
				err: fmt.Errorf("quest %s not found", questID)}
		}
		if err := fn(q); err != nil {
			return questChangedMsg{questID: questID, action: action, outcome: quest.OutcomeFailed, err: err}
		}
		out, err := q.Save(ctx)
		if err == nil && out == quest.OutcomeSaved {
			b.RefreshQuest(ctx, questID, false)
		}
		if out.Skipped() {
			// Undo the local change so the view matches storage.
			_ = q.Refresh(ctx)
		}
		return questChangedMsg{questID: questID, action: action, outcome: out, err: err}
	})
}

func (m Model) addTask(questID string, rec model.TaskRecord) tea.Cmd {
	return m.mutate(questID, "add task", func(q *quest.Quest) error {
		if !q.AddTask(rec) {
			return fmt.Errorf("objective needs a name")
		}
		return nil
	})
}

func (m Model) addReward(questID string, rec model.RewardRecord) tea.Cmd {
	return m.mutate(questID, "add reward", func(q *quest.Quest) error {
		if _, err := model.CreateReward(rec); err != nil {
			return err
		}
		q.AddReward(rec)
		return nil
	})
}

func (m Model) cycleStatus(questID string) tea.Cmd {
	b := m.deps.Broadcaster
	return m.withDB(func(ctx context.Context, db *quest.DB) tea.Msg {
		q := db.GetQuest(questID)
		if q == nil {
			return questChangedMsg{questID: questID, action: "status", outcome: quest.OutcomeSkippedNoEntry}
		}
		next := model.Statuses[(slices.Index(model.Statuses, q.Status)+1)%len(model.Statuses)]
		out, err := q.Move(ctx, next)
		if err == nil && out == quest.OutcomeSaved {
			b.RefreshAll(ctx)
		}
		return questChangedMsg{questID: questID, action: "status", outcome: out, err: err}
	})
}

func (m Model) moveQuest(questID string, status model.Status) tea.Cmd {
	b := m.deps.Broadcaster
	return m.withDB(func(ctx context.Context, db *quest.DB) tea.Msg {
		q := db.GetQuest(questID)
		if q == nil {
			return questChangedMsg{questID: questID, action: "status", outcome: quest.OutcomeSkippedNoEntry}
		}
		out, err := q.Move(ctx, status)
		if err == nil && out == quest.OutcomeSaved {
			b.RefreshAll(ctx)
		}
		return questChangedMsg{questID: questID, action: "status", outcome: out, err: err}
	})
}

func (m Model) deleteQuest(questID string) tea.Cmd {
	b := m.deps.Broadcaster
	return m.withDB(func(ctx context.Context, db *quest.DB) tea.Msg {
		_, err := db.DeleteQuest(ctx, questID)
		if err == nil {
			b.RefreshAll(ctx)
		}
		return questChangedMsg{questID: questID, action: "delete", err: err, deleted: err == nil}
	})
}

func (m Model) setPrimary(questID string) tea.Cmd {
	st, b := m.deps.Settings, m.deps.Broadcaster
	user := m.deps.DB.User()
	return func() tea.Msg {
		ctx := context.Background()
		if !user.IsGM() {
			return questChangedMsg{action: "primary", outcome: quest.OutcomeSkippedNoPermission}
		}
		if err := st.SetPrimaryQuest(ctx, questID); err != nil {
			return questChangedMsg{action: "primary", outcome: quest.OutcomeFailed, err: err}
		}
		b.RefreshAll(ctx)
		return questChangedMsg{action: "primary"}
	}
}

// setFlag stores a GM-only boolean world setting.
func (m Model) setFlag(name string, set func(context.Context, bool) error, args []string) tea.Cmd {
	user := m.deps.DB.User()
	b := m.deps.Broadcaster
	return func() tea.Msg {
		if !user.IsGM() {
			return questChangedMsg{action: name, outcome: quest.OutcomeSkippedNoPermission}
		}
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return questChangedMsg{action: name, outcome: quest.OutcomeFailed,
				err: fmt.Errorf("usage: %s on|off", name)}
		}
		ctx := context.Background()
		if err := set(ctx, args[0] == "on"); err != nil {
			return questChangedMsg{action: name, outcome: quest.OutcomeFailed, err: err}
		}
		b.RefreshAll(ctx)
		return questChangedMsg{action: name}
	}
}

// handlePreviewAction routes an action requested from the preview.
func (m Model) handlePreviewAction(msg preview.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case preview.ActionToggleTask:
		tr, id, idx := m.deps.Tracker, msg.QuestID, msg.Index
		return m, m.withDB(func(ctx context.Context, _ *quest.DB) tea.Msg {
			out, err := tr.HandleTaskClick(ctx, id, idx)
			return questChangedMsg{questID: id, action: "task", outcome: out, err: err}
		})
	case preview.ActionAddTask:
		m.previousView = ViewPreview
		m.currentView = ViewForm
		cmd := m.formView.StartTask(msg.QuestID)
		return m, cmd
	case preview.ActionAddReward:
		m.previousView = ViewPreview
		m.currentView = ViewForm
		cmd := m.formView.StartReward(msg.QuestID)
		return m, cmd
	case preview.ActionCycleStatus:
		return m, m.cycleStatus(msg.QuestID)
	case preview.ActionDelete:
		return m, m.deleteQuest(msg.QuestID)
	case preview.ActionSetPrimary:
		return m, m.setPrimary(msg.QuestID)
	}
	return m, nil
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	target := m.preview.QuestID()
	if id := m.trackerView.SelectedQuestID(); id != "" && (m.previousView == ViewTracker || target == "") {
		target = id
	}

	switch c.Name {
	case command.NewQuest:
		return m.startNewQuest("")
	case command.Delete:
		if target != "" {
			return m.deleteQuest(target)
		}
	case command.Status:
		if target == "" || len(c.Args) != 1 {
			m.statusMsg = "usage: status <" + statusNames() + ">"
			return nil
		}
		st, err := model.ParseStatus(c.Args[0])
		if err != nil {
			m.statusMsg = err.Error()
			return nil
		}
		return m.moveQuest(target, st)
	case command.Primary:
		if target != "" {
			return m.setPrimary(target)
		}
	case command.Unprimary:
		return m.setPrimary("")
	case command.Refresh:
		return m.reloadAll()
	case command.Settings:
		return m.openSettings()
	case command.TrustedEdit:
		return m.setFlag(c.Name, m.deps.Settings.SetTrustedPlayerEdit, c.Args)
	case command.Resizable:
		return m.setFlag(c.Name, m.deps.Settings.SetTrackerResizable, c.Args)
	case command.PrimaryFirst:
		return m.setFlag(c.Name, m.deps.Settings.SetShowOnlyPrimaryDefault, c.Args)
	case command.Quit:
		m.shutdown()
		return tea.Quit
	default:
		m.statusMsg = "unknown command: " + c.Name
	}
	return nil
}

func statusNames() string {
	var out string
	for i, s := range model.Statuses {
		if i > 0 {
			out += "|"
		}
		out += string(s)
	}
	return out
}
