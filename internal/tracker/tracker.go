// Package tracker derives the quest tracker view model and handles the
// interactions that mutate quests from the tracker.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/session"
	"github.com/nhle/questlog/internal/settings"
)

// PositionDelay is how long position writes wait for further moves.
const PositionDelay = 1000 * time.Millisecond

var (
	// ErrUnknownQuest is returned when a click names a quest not in the index.
	ErrUnknownQuest = errors.New("unknown quest")
	// ErrUnknownTask is returned when a click names a task index out of range.
	ErrUnknownTask = errors.New("unknown task")
)

// Notifier tells other clients a quest changed.
type Notifier interface {
	RefreshQuest(ctx context.Context, questID string, focus bool)
}

// Row is one quest in the tracker. Tasks and Subquests are empty while
// the row is collapsed.
type Row struct {
	ID        string
	Name      string
	Source    string
	Status    model.Status
	IsPrimary bool

	CanEdit    bool
	PlayerEdit bool
	IsGM       bool
	IsHidden   bool
	IsInactive bool
	IsPersonal bool
	Collapsed  bool

	TasksDone  int
	TasksTotal int

	Tasks     []quest.TaskView
	Subquests []quest.SubquestView
}

// Tracker owns the tracker state for one client.
type Tracker struct {
	db       *quest.DB
	settings *settings.Settings
	session  *session.Store
	notifier Notifier
	bounds   model.TrackerConfig
	logger   *zap.Logger

	position  settings.Position
	debouncer *Debouncer
}

// New returns a Tracker. The position starts from the saved setting.
func New(
	db *quest.DB,
	st *settings.Settings,
	sess *session.Store,
	notifier Notifier,
	bounds model.TrackerConfig,
	logger *zap.Logger,
) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		db:        db,
		settings:  st,
		session:   sess,
		notifier:  notifier,
		bounds:    bounds,
		logger:    logger,
		position:  st.TrackerPosition(),
		debouncer: NewDebouncer(PositionDelay),
	}
}

// Rows returns the tracker rows for the current filter and primary quest.
func (t *Tracker) Rows() []Row {
	return t.PrepareQuests(t.ShowOnlyPrimary(), t.settings.PrimaryQuest())
}

// PrepareQuests builds the tracker rows. With showOnlyPrimary the result
// holds the primary quest alone, or nothing when none is set; otherwise it
// holds every active quest the user can observe, in index order.
func (t *Tracker) PrepareQuests(showOnlyPrimary bool, primaryQuest string) []Row {
	user := t.db.User()

	var quests quest.Collection
	if showOnlyPrimary {
		if q := t.db.GetQuest(primaryQuest); q != nil && q.IsObservable(user) {
			quests = quest.Collection{q}
		}
	} else {
		quests = t.db.SortCollect(quest.CollectOptions{
			Status:     model.StatusActive,
			Observable: true,
		})
	}

	trusted := t.settings.TrustedPlayerEdit()
	return quest.Transform(quests, func(q *quest.Quest) Row {
		e := q.Enrich(user)
		owner := q.IsOwner(user)
		row := Row{
			ID:         e.ID,
			Name:       e.Name,
			Source:     e.Giver.Name,
			Status:     e.Status,
			IsPrimary:  e.ID == primaryQuest,
			CanEdit:    user.IsGM() || (owner && trusted),
			PlayerEdit: owner,
			IsGM:       e.IsGM,
			IsHidden:   e.IsHidden,
			IsInactive: e.IsInactive,
			IsPersonal: e.IsPersonal,
			Collapsed:  t.IsCollapsed(e.ID),
			TasksDone:  e.TasksDone,
			TasksTotal: e.TasksTotal,
		}
		if !row.Collapsed {
			row.Tasks = e.Tasks
			row.Subquests = e.Subquests
		}
		return row
	})
}

// IsCollapsed reports the session collapse state of a quest. Quests with
// no recorded state are collapsed.
func (t *Tracker) IsCollapsed(questID string) bool {
	v, ok := t.session.Get(session.FolderStateKey(questID))
	return !ok || v == session.Collapsed
}

// ToggleCollapsed flips the collapse state of a quest and returns it.
func (t *Tracker) ToggleCollapsed(questID string) bool {
	collapsed := !t.IsCollapsed(questID)
	state := session.Expanded
	if collapsed {
		state = session.Collapsed
	}
	t.session.Set(session.FolderStateKey(questID), state)
	return collapsed
}

// ShowOnlyPrimary returns the session filter, falling back to the world default.
func (t *Tracker) ShowOnlyPrimary() bool {
	return t.session.Bool(session.KeyShowPrimary, t.settings.ShowOnlyPrimaryDefault())
}

// ToggleShowOnlyPrimary flips the session filter and returns it.
func (t *Tracker) ToggleShowOnlyPrimary() bool {
	v := !t.ShowOnlyPrimary()
	t.session.SetBool(session.KeyShowPrimary, v)
	return v
}

// CanEdit reports whether the acting user may change q from the tracker.
func (t *Tracker) CanEdit(q *quest.Quest) bool {
	user := t.db.User()
	return user.IsGM() || (q.IsOwner(user) && t.settings.TrustedPlayerEdit())
}

// HandleTaskClick advances the task state machine, saves the quest and
// tells other clients to refresh it without taking focus.
func (t *Tracker) HandleTaskClick(ctx context.Context, questID string, taskIndex int) (quest.Outcome, error) {
	q := t.db.GetQuest(questID)
	if q == nil {
		return quest.OutcomeFailed, fmt.Errorf("quest %s: %w", questID, ErrUnknownQuest)
	}
	if taskIndex < 0 || taskIndex >= len(q.Tasks) {
		return quest.OutcomeFailed, fmt.Errorf("quest %s task %d: %w", questID, taskIndex, ErrUnknownTask)
	}
	if !t.CanEdit(q) {
		return quest.OutcomeSkippedNoPermission, nil
	}

	q.Tasks[taskIndex].Toggle()
	out, err := q.Save(ctx)
	if err != nil {
		return out, err
	}
	if out == quest.OutcomeSaved && t.notifier != nil {
		t.notifier.RefreshQuest(ctx, questID, false)
	}

	t.logger.Debug("task toggled",
		zap.String("quest", questID),
		zap.Int("task", taskIndex),
		zap.String("state", string(q.Tasks[taskIndex].State())),
		zap.Stringer("outcome", out))
	return out, nil
}

// Position returns the current tracker geometry.
func (t *Tracker) Position() settings.Position {
	return t.position
}

// SetPosition clamps pos to the configured bounds and schedules a
// debounced write. When the tracker is not resizable the height follows
// contentHeight instead of pos.Height.
func (t *Tracker) SetPosition(pos settings.Position, contentHeight int) settings.Position {
	if !t.settings.TrackerResizable() {
		pos.Height = contentHeight
	}
	pos.Width = clamp(pos.Width, t.bounds.MinWidth, t.bounds.MaxWidth)
	pos.Height = clamp(pos.Height, t.bounds.MinHeight, t.bounds.MaxHeight)
	pos.Left = max(pos.Left, 0)
	pos.Top = max(pos.Top, 0)

	t.position = pos
	t.debouncer.Call(func() {
		if err := t.settings.SetTrackerPosition(context.Background(), pos); err != nil {
			t.logger.Warn("saving tracker position", zap.Error(err))
		}
	})
	return pos
}

// SetBounds replaces the size limits used by later SetPosition calls.
func (t *Tracker) SetBounds(b model.TrackerConfig) {
	t.bounds = b
}

// Close writes any pending position immediately.
func (t *Tracker) Close() {
	t.debouncer.Flush()
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
