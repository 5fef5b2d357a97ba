package quest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/store"
)

// DB is the in-memory index of quests stored in the quest folder. Quests
// refer to each other by ID and are resolved through the index, so a
// *Quest handed out by GetQuest stays valid across Load and Reload.
//
// DB does not lock on its own. Callers that reach it from more than one
// goroutine hold Lock around each operation.
type DB struct {
	mu sync.Mutex

	store  store.Store
	user   model.User
	logger *zap.Logger
	folder *Folder

	quests map[string]*Quest
}

// NewDB returns an empty index acting as user. Call Load to populate it.
func NewDB(s store.Store, user model.User, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		store:  s,
		user:   user,
		logger: logger,
		folder: NewFolder(s, logger),
		quests: make(map[string]*Quest),
	}
}

// Lock acquires the index lock.
func (db *DB) Lock() { db.mu.Lock() }

// Unlock releases the index lock.
func (db *DB) Unlock() { db.mu.Unlock() }

// User returns the acting user.
func (db *DB) User() model.User {
	return db.user
}

// Folder returns the quest folder helper.
func (db *DB) Folder() *Folder {
	return db.folder
}

// Store returns the backing store.
func (db *DB) Store() store.Store {
	return db.store
}

// Load reads every quest entry from the quest folder. Quests already in
// the index are updated in place; quests no longer stored are dropped.
func (db *DB) Load(ctx context.Context) error {
	folder, err := db.folder.Get(ctx)
	if err != nil {
		return err
	}
	if folder == nil {
		clear(db.quests)
		return nil
	}

	entries, err := db.store.GetEntries(ctx, store.EntryFilter{FolderID: &folder.ID})
	if err != nil {
		return fmt.Errorf("loading quests: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	for i := range entries {
		e := entries[i]
		payload, ok, err := decodePayload(&e)
		if err != nil {
			db.logger.Warn("skipping unreadable quest", zap.String("entry", e.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		db.put(&e, payload)
		seen[e.ID] = true
	}
	for id := range db.quests {
		if !seen[id] {
			delete(db.quests, id)
		}
	}

	db.logger.Debug("quests loaded", zap.Int("count", len(db.quests)))
	return nil
}

func (db *DB) put(e *model.Entry, payload model.Quest) *Quest {
	if q, ok := db.quests[e.ID]; ok {
		q.Quest = payload
		q.entry = e
		return q
	}
	q := &Quest{Quest: payload, id: e.ID, entry: e, db: db}
	db.quests[e.ID] = q
	return q
}

// Reload refreshes one quest from storage, adding it when new and
// dropping it when its entry is gone.
func (db *DB) Reload(ctx context.Context, id string) error {
	if q, ok := db.quests[id]; ok {
		err := q.Refresh(ctx)
		if errors.Is(err, store.ErrNotFound) {
			delete(db.quests, id)
			return nil
		}
		return err
	}

	e, err := db.store.GetEntryByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reloading quest %s: %w", id, err)
	}
	payload, ok, err := decodePayload(e)
	if err != nil || !ok {
		return err
	}
	db.put(e, payload)
	return nil
}

// GetQuest returns the quest with id, or nil.
func (db *DB) GetQuest(id string) *Quest {
	if id == "" {
		return nil
	}
	return db.quests[id]
}

// GetQuestEntry returns the backing entry of the quest with id, or nil.
func (db *DB) GetQuestEntry(id string) *model.Entry {
	if q := db.GetQuest(id); q != nil {
		return q.entry
	}
	return nil
}

// Len returns the number of indexed quests.
func (db *DB) Len() int {
	return len(db.quests)
}

// CollectOptions narrows SortCollect.
type CollectOptions struct {
	// Status limits the result to one status; empty means all.
	Status model.Status
	// Observable drops quests the acting user cannot see.
	Observable bool
}

// Collection is an ordered list of quests.
type Collection []*Quest

// Filter returns the quests for which keep returns true.
func (c Collection) Filter(keep func(*Quest) bool) Collection {
	out := make(Collection, 0, len(c))
	for _, q := range c {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

// IDs returns the quest identifiers in order.
func (c Collection) IDs() []string {
	return Transform(c, (*Quest).ID)
}

// Transform maps every quest in c through fn.
func Transform[T any](c Collection, fn func(*Quest) T) []T {
	out := make([]T, 0, len(c))
	for _, q := range c {
		out = append(out, fn(q))
	}
	return out
}

// SortCollect returns the indexed quests matching opts ordered by name
// (case-insensitive) and then by ID.
func (db *DB) SortCollect(opts CollectOptions) Collection {
	out := make(Collection, 0, len(db.quests))
	for _, q := range db.quests {
		if opts.Status != "" && q.Status != opts.Status {
			continue
		}
		if opts.Observable && !q.IsObservable(db.user) {
			continue
		}
		out = append(out, q)
	}
	slices.SortFunc(out, func(a, b *Quest) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	return out
}

// CreateOptions are the fields accepted when creating a quest.
type CreateOptions struct {
	Name        string
	Status      model.Status
	Giver       string
	GiverName   string
	Description string
	Parent      string
	// Ownership overrides the default ownership of the new entry.
	Ownership model.Ownership
}

// CreateQuest stores a new quest in the quest folder, creating the folder
// when needed, and links it under its parent. The parent must be writable
// by the acting user, otherwise ErrForbidden is returned and nothing is
// stored.
func (db *DB) CreateQuest(ctx context.Context, opts CreateOptions) (*Quest, error) {
	var blank model.Entry
	if !blank.CanUserModify(db.user, model.ActionCreate) {
		return nil, fmt.Errorf("creating quest: %w", ErrForbidden)
	}

	folder, err := db.folder.InitializeJournals(ctx)
	if err != nil {
		return nil, err
	}

	var parent *Quest
	if opts.Parent != "" {
		parent = db.GetQuest(opts.Parent)
		if parent == nil {
			return nil, fmt.Errorf("parent quest %s: %w", opts.Parent, store.ErrNotFound)
		}
		if !parent.canUpdate() {
			return nil, fmt.Errorf("linking quest under %s: %w", opts.Parent, ErrForbidden)
		}
	}

	payload := model.NewQuest(opts.Name)
	if opts.Status != "" {
		payload.Status = opts.Status
	}
	if opts.Giver != "" {
		g := opts.Giver
		payload.Giver = &g
	}
	payload.GiverName = opts.GiverName
	payload.Description = opts.Description
	payload.SetParent(opts.Parent)

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding quest: %w", err)
	}

	ownership := opts.Ownership
	if ownership == nil {
		ownership = model.Ownership{model.DefaultOwnerKey: model.PermissionNone}
		if !db.user.IsGM() {
			ownership[db.user.ID] = model.PermissionOwner
		}
	}

	entry, err := db.store.CreateEntry(ctx, model.Entry{
		Name:      payload.Name,
		FolderID:  &folder.ID,
		Ownership: ownership,
		Flags:     map[string]json.RawMessage{FlagNamespace: raw},
	})
	if err != nil {
		return nil, fmt.Errorf("creating quest: %w", err)
	}

	q := db.put(&entry, payload)
	if parent != nil {
		parent.AddSubquest(q.id)
		out, err := parent.Save(ctx)
		if err != nil {
			return q, err
		}
		if out.Skipped() {
			if rerr := parent.Refresh(ctx); rerr != nil {
				db.logger.Warn("refreshing parent after skipped save", zap.String("quest", parent.id), zap.Error(rerr))
			}
			if out == OutcomeSkippedNoPermission {
				return q, fmt.Errorf("linking quest %s under %s: %w", q.id, parent.id, ErrForbidden)
			}
			return q, fmt.Errorf("linking quest %s under %s: parent save %s", q.id, parent.id, out)
		}
	}

	db.logger.Info("quest created", zap.String("quest", q.id), zap.String("name", q.Name))
	return q, nil
}

// DeleteQuest deletes the quest with id, refreshes every quest that the
// deletion re-saved and drops the deleted quest from the index.
func (db *DB) DeleteQuest(ctx context.Context, id string) (DeleteResult, error) {
	q := db.GetQuest(id)
	if q == nil {
		return DeleteResult{}, fmt.Errorf("quest %s: %w", id, store.ErrNotFound)
	}

	// The parent and subquests are re-read afterwards whether or not the
	// delete completed, so the index matches storage.
	family := slices.Clone(q.Subquests)
	if pid := q.ParentID(); pid != "" {
		family = append(family, pid)
	}

	res, err := q.Delete(ctx)
	for _, fid := range family {
		if rerr := db.Reload(ctx, fid); rerr != nil {
			db.logger.Warn("reloading quest after delete", zap.String("quest", fid), zap.Error(rerr))
		}
	}
	if err != nil {
		if rerr := db.Reload(ctx, id); rerr != nil {
			db.logger.Warn("reloading quest after failed delete", zap.String("quest", id), zap.Error(rerr))
		}
		return res, err
	}
	delete(db.quests, id)
	return res, nil
}

// Import stores a quest payload under a fixed ID, replacing any entry that
// already has it. Family links are written as given.
func (db *DB) Import(ctx context.Context, id string, payload model.Quest) (*Quest, error) {
	if !db.user.IsGM() {
		return nil, fmt.Errorf("importing quest %s: %w", id, ErrForbidden)
	}
	folder, err := db.folder.InitializeJournals(ctx)
	if err != nil {
		return nil, err
	}
	payload.Normalize()
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding quest %s: %w", id, err)
	}

	entry, err := db.store.ReplaceEntry(ctx, model.Entry{
		ID:        id,
		Name:      payload.Name,
		FolderID:  &folder.ID,
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionNone},
		Flags:     map[string]json.RawMessage{FlagNamespace: raw},
	})
	if err != nil {
		return nil, fmt.Errorf("importing quest %s: %w", id, err)
	}
	return db.put(&entry, payload), nil
}
