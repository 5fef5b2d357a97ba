// Package quest holds the quest aggregate, the in-memory quest index and
// the reserved journal folder that stores quest entries.
package quest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/store"
)

// FlagNamespace is the entry flag key that carries the quest payload.
const FlagNamespace = "questlog"

// Quest is a quest payload bound to its journal entry. Parent and subquest
// links are identifiers resolved through the owning DB.
type Quest struct {
	model.Quest

	id    string
	entry *model.Entry
	db    *DB
}

// ID returns the quest identifier (the entry ID).
func (q *Quest) ID() string {
	return q.id
}

// Entry returns the last known backing entry, or nil.
func (q *Quest) Entry() *model.Entry {
	return q.entry
}

// ToJSON encodes the payload as stored on the entry.
func (q *Quest) ToJSON() (json.RawMessage, error) {
	raw, err := json.Marshal(q.Quest)
	if err != nil {
		return nil, fmt.Errorf("encoding quest %s: %w", q.id, err)
	}
	return raw, nil
}

// decodePayload reads the quest payload from an entry's flags.
func decodePayload(e *model.Entry) (model.Quest, bool, error) {
	raw, ok := e.Flag(FlagNamespace)
	if !ok {
		return model.Quest{}, false, nil
	}
	var q model.Quest
	if err := json.Unmarshal(raw, &q); err != nil {
		return model.Quest{}, true, fmt.Errorf("decoding quest %s: %w", e.ID, err)
	}
	q.Normalize()
	return q, true, nil
}

// IsObservable reports whether u may see the quest.
func (q *Quest) IsObservable(u model.User) bool {
	if u.IsGM() {
		return true
	}
	return q.entry != nil && q.entry.TestUserPermission(u, model.PermissionObserver, false)
}

// IsOwner reports whether u owns the quest.
func (q *Quest) IsOwner(u model.User) bool {
	if u.IsGM() {
		return true
	}
	return q.entry != nil && q.entry.TestUserPermission(u, model.PermissionOwner, false)
}

// Save writes the payload to the backing entry. It is skipped, without
// error, when the entry is gone or the acting user may not update it.
func (q *Quest) Save(ctx context.Context) (Outcome, error) {
	entry, err := q.db.store.GetEntryByID(ctx, q.id)
	if errors.Is(err, store.ErrNotFound) {
		q.db.logger.Debug("quest save skipped: no entry", zap.String("quest", q.id))
		return OutcomeSkippedNoEntry, nil
	}
	if err != nil {
		return OutcomeFailed, fmt.Errorf("saving quest %s: %w", q.id, err)
	}
	if !entry.CanUserModify(q.db.user, model.ActionUpdate) {
		q.db.logger.Debug("quest save skipped: no permission",
			zap.String("quest", q.id), zap.String("user", q.db.user.ID))
		return OutcomeSkippedNoPermission, nil
	}

	q.Normalize()
	payload, err := q.ToJSON()
	if err != nil {
		return OutcomeFailed, err
	}

	name := q.Name
	updated, err := q.db.store.UpdateEntry(ctx, q.id, model.EntryPatch{
		Name:  &name,
		Flags: map[string]json.RawMessage{FlagNamespace: payload},
	})
	if err != nil {
		return OutcomeFailed, fmt.Errorf("saving quest %s: %w", q.id, err)
	}
	q.entry = updated

	q.db.logger.Debug("quest saved", zap.String("quest", q.id))
	return OutcomeSaved, nil
}

// Move sets the status and saves. Without a backing entry nothing changes.
func (q *Quest) Move(ctx context.Context, target model.Status) (Outcome, error) {
	if q.entry == nil {
		return OutcomeSkippedNoEntry, nil
	}
	q.Status = target
	return q.Save(ctx)
}

// Refresh reloads every field from the stored entry in place, so pointers
// held elsewhere stay valid.
func (q *Quest) Refresh(ctx context.Context) error {
	entry, err := q.db.store.GetEntryByID(ctx, q.id)
	if err != nil {
		return fmt.Errorf("refreshing quest %s: %w", q.id, err)
	}
	payload, ok, err := decodePayload(entry)
	if err != nil {
		return err
	}
	if !ok {
		payload = model.NewQuest(entry.Name)
	}
	q.Quest = payload
	q.entry = entry
	return nil
}

// canUpdate reports whether the acting user may write the quest's entry.
// A quest without an entry has nothing to write and passes.
func (q *Quest) canUpdate() bool {
	return q.entry == nil || q.entry.CanUserModify(q.db.user, model.ActionUpdate)
}

// Delete detaches the quest from its family and removes its entry.
// The quest is removed from its parent's subquests, each subquest is
// re-parented to that parent (or to none) and saved, the parent is saved,
// then the entry is deleted. The parent and every subquest must be
// writable by the acting user, otherwise ErrForbidden is returned before
// any change. Steps already written are not rolled back when a later one
// fails.
func (q *Quest) Delete(ctx context.Context) (DeleteResult, error) {
	res := DeleteResult{DeletedID: q.id}

	if q.entry != nil && !q.entry.CanUserModify(q.db.user, model.ActionDelete) {
		return res, fmt.Errorf("deleting quest %s: %w", q.id, ErrForbidden)
	}

	// Every quest whose links change must be writable, or nothing is touched.
	parent := q.db.GetQuest(q.ParentID())
	if parent != nil && !parent.canUpdate() {
		return res, fmt.Errorf("deleting quest %s: parent %s: %w", q.id, parent.id, ErrForbidden)
	}
	for _, childID := range q.Subquests {
		if child := q.db.GetQuest(childID); child != nil && !child.canUpdate() {
			return res, fmt.Errorf("deleting quest %s: subquest %s: %w", q.id, childID, ErrForbidden)
		}
	}

	parentID := ""
	if parent != nil {
		parentID = parent.id
		parent.RemoveSubquest(q.id)
	}

	for _, childID := range q.Subquests {
		child := q.db.GetQuest(childID)
		if child == nil {
			continue
		}
		child.SetParent(parentID)
		out, err := child.Save(ctx)
		if err != nil {
			return res, fmt.Errorf("re-parenting subquest %s: %w", childID, err)
		}
		if out == OutcomeSaved {
			res.SavedIDs = append(res.SavedIDs, childID)
		}
		if parent != nil {
			parent.AddSubquest(childID)
		}
	}

	if parent != nil {
		out, err := parent.Save(ctx)
		if err != nil {
			return res, fmt.Errorf("saving parent %s: %w", parentID, err)
		}
		if out == OutcomeSaved {
			res.SavedIDs = append(res.SavedIDs, parentID)
		}
	}

	if err := q.db.store.DeleteEntry(ctx, q.id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return res, fmt.Errorf("deleting quest %s: %w", q.id, err)
	}
	q.entry = nil

	q.db.logger.Info("quest deleted",
		zap.String("quest", q.id),
		zap.Strings("saved", res.SavedIDs))
	return res, nil
}
