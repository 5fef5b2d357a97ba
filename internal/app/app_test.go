package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/notify"
	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/session"
	"github.com/nhle/questlog/internal/settings"
	"github.com/nhle/questlog/internal/tracker"
	"github.com/nhle/questlog/internal/ui/command"
	"github.com/nhle/questlog/internal/ui/preview"
	"github.com/nhle/questlog/tests/testutil"
)

var bounds = model.TrackerConfig{MinWidth: 20, MaxWidth: 80, MinHeight: 4, MaxHeight: 40}

func newTestModel(t *testing.T, user model.User) Model {
	t.Helper()
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	logger := zap.NewNop()

	st, err := settings.New(ctx, s, logger)
	require.NoError(t, err)
	db := quest.NewDB(s, user, logger)
	b := notify.NewBroadcaster(s, notify.NewClientID(), logger)
	tr := tracker.New(db, st, session.New(), b, bounds, logger)
	t.Cleanup(tr.Close)

	return New(Deps{DB: db, Settings: st, Tracker: tr, Broadcaster: b, Logger: logger})
}

// update feeds msg to m and returns the resulting root model.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

var gm = model.User{ID: "gm", Name: "Game Master", Role: model.RoleGameMaster}

func TestCreateQuest_OpensPreview(t *testing.T) {
	m := newTestModel(t, gm)

	msg := m.createQuest(quest.CreateOptions{Name: "Rescue the cat"})()
	changed, ok := msg.(questChangedMsg)
	require.True(t, ok)
	require.NoError(t, changed.err)
	assert.True(t, changed.openPreview)

	m = update(t, m, changed)
	assert.Equal(t, ViewPreview, m.currentView)
	assert.Empty(t, m.statusMsg)

	loaded := m.openQuest(changed.questID)()
	m = update(t, m, loaded)
	assert.Equal(t, changed.questID, m.preview.QuestID())
}

func TestPreviewAction_ToggleTask(t *testing.T) {
	m := newTestModel(t, gm)
	q, err := m.deps.DB.CreateQuest(context.Background(), quest.CreateOptions{Name: "Chores"})
	require.NoError(t, err)
	q.AddTask(model.TaskRecord{Name: "Sweep"})
	_, err = q.Save(context.Background())
	require.NoError(t, err)

	_, cmd := m.handlePreviewAction(preview.ActionMsg{Action: preview.ActionToggleTask, QuestID: q.ID(), Index: 0})
	require.NotNil(t, cmd)
	changed, ok := cmd().(questChangedMsg)
	require.True(t, ok)
	assert.Equal(t, quest.OutcomeSaved, changed.outcome)
	assert.Equal(t, model.TaskStateChecked, q.Tasks[0].State())
}

func TestPreviewAction_AddTaskOpensForm(t *testing.T) {
	m := newTestModel(t, gm)
	next, _ := m.handlePreviewAction(preview.ActionMsg{Action: preview.ActionAddTask, QuestID: "q1"})
	assert.Equal(t, ViewForm, next.(Model).currentView)
}

func TestAddTaskAndReward(t *testing.T) {
	m := newTestModel(t, gm)
	q, err := m.deps.DB.CreateQuest(context.Background(), quest.CreateOptions{Name: "Bounty"})
	require.NoError(t, err)

	changed := m.addTask(q.ID(), model.TaskRecord{Name: "Find the thief"})().(questChangedMsg)
	assert.Equal(t, quest.OutcomeSaved, changed.outcome)
	require.Len(t, q.Tasks, 1)

	changed = m.addTask(q.ID(), model.TaskRecord{})().(questChangedMsg)
	assert.Error(t, changed.err)
	assert.Len(t, q.Tasks, 1)

	changed = m.addReward(q.ID(), model.RewardRecord{Type: model.RewardTypeItem, Data: map[string]any{"name": "Gold"}})().(questChangedMsg)
	assert.ErrorIs(t, changed.err, model.ErrInvalidReward)
	assert.Empty(t, q.Rewards)
}

func TestCycleStatus(t *testing.T) {
	m := newTestModel(t, gm)
	q, err := m.deps.DB.CreateQuest(context.Background(), quest.CreateOptions{Name: "Walk", Status: model.StatusActive})
	require.NoError(t, err)

	changed := m.cycleStatus(q.ID())().(questChangedMsg)
	require.NoError(t, changed.err)
	assert.NotEqual(t, model.StatusActive, q.Status)
}

func TestDeleteClearsPreview(t *testing.T) {
	m := newTestModel(t, gm)
	q, err := m.deps.DB.CreateQuest(context.Background(), quest.CreateOptions{Name: "Doomed"})
	require.NoError(t, err)

	m = update(t, m, m.openQuest(q.ID())())
	m.currentView = ViewPreview
	require.Equal(t, q.ID(), m.preview.QuestID())

	changed := m.deleteQuest(q.ID())().(questChangedMsg)
	require.True(t, changed.deleted)

	m = update(t, m, changed)
	assert.Empty(t, m.preview.QuestID())
	assert.Equal(t, ViewTracker, m.currentView)
	assert.Nil(t, m.deps.DB.GetQuest(q.ID()))
}

func TestExecuteCommand(t *testing.T) {
	m := newTestModel(t, gm)
	q, err := m.deps.DB.CreateQuest(context.Background(), quest.CreateOptions{Name: "Target"})
	require.NoError(t, err)
	m = update(t, m, m.openQuest(q.ID())())
	m.previousView = ViewPreview

	cmd := m.executeCommand(command.CommandMsg{Name: command.Status, Args: []string{"completed"}})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, model.StatusCompleted, q.Status)

	assert.Nil(t, m.executeCommand(command.CommandMsg{Name: command.Status, Args: []string{"bogus"}}))
	assert.Contains(t, m.statusMsg, "bogus")

	cmd = m.executeCommand(command.CommandMsg{Name: command.TrustedEdit, Args: []string{"on"}})
	require.NotNil(t, cmd)
	cmd()
	assert.True(t, m.deps.Settings.TrustedPlayerEdit())

	cmd = m.executeCommand(command.CommandMsg{Name: command.Primary})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, q.ID(), m.deps.Settings.PrimaryQuest())

	assert.Nil(t, m.executeCommand(command.CommandMsg{Name: "dance"}))
	assert.Equal(t, "unknown command: dance", m.statusMsg)
}

func TestSettingsAreGMOnly(t *testing.T) {
	player := model.User{ID: "p1", Name: "Player", Role: model.RolePlayer}
	m := newTestModel(t, player)

	changed := m.setFlag(command.Resizable, m.deps.Settings.SetTrackerResizable, []string{"on"})().(questChangedMsg)
	assert.Equal(t, quest.OutcomeSkippedNoPermission, changed.outcome)
	assert.False(t, m.deps.Settings.TrackerResizable())

	assert.Nil(t, m.openSettings())
	assert.Equal(t, ViewTracker, m.currentView)
	assert.NotEmpty(t, m.statusMsg)
}

func TestViewBeforeResize(t *testing.T) {
	m := newTestModel(t, gm)
	assert.Equal(t, "Loading...", m.View())

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.NotEmpty(t, m.View())
}
