package quest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/store"
	"github.com/nhle/questlog/tests/testutil"
)

var (
	gm     = model.User{ID: "gm", Name: "Game Master", Role: model.RoleGameMaster}
	player = model.User{ID: "p1", Name: "Player One", Role: model.RolePlayer}
)

func newTestDB(t *testing.T, u model.User) (*DB, *store.SQLiteStore) {
	t.Helper()
	s := testutil.NewTestStore(t)
	return NewDB(s, u, zap.NewNop()), s
}

func mustCreate(t *testing.T, db *DB, opts CreateOptions) *Quest {
	t.Helper()
	q, err := db.CreateQuest(context.Background(), opts)
	require.NoError(t, err)
	return q
}

func TestDelete_RelinksChildrenToGrandparent(t *testing.T) {
	ctx := context.Background()
	db, s := newTestDB(t, gm)

	p := mustCreate(t, db, CreateOptions{Name: "P"})
	a := mustCreate(t, db, CreateOptions{Name: "A", Parent: p.ID()})
	b := mustCreate(t, db, CreateOptions{Name: "B", Parent: a.ID()})
	c := mustCreate(t, db, CreateOptions{Name: "C", Parent: a.ID()})

	require.Equal(t, []string{a.ID()}, p.Subquests)
	require.Equal(t, []string{b.ID(), c.ID()}, a.Subquests)

	res, err := db.DeleteQuest(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.ID(), res.DeletedID)
	assert.Equal(t, []string{b.ID(), c.ID(), p.ID()}, res.SavedIDs)

	assert.Equal(t, []string{b.ID(), c.ID()}, p.Subquests)
	assert.Equal(t, p.ID(), b.ParentID())
	assert.Equal(t, p.ID(), c.ParentID())
	assert.Nil(t, db.GetQuest(a.ID()))

	_, err = s.GetEntryByID(ctx, a.ID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Stored state matches memory.
	fresh := NewDB(s, gm, zap.NewNop())
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, []string{b.ID(), c.ID()}, fresh.GetQuest(p.ID()).Subquests)
	assert.Equal(t, p.ID(), fresh.GetQuest(b.ID()).ParentID())
}

func TestDelete_WithoutParentOrphansChildren(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t, gm)

	a := mustCreate(t, db, CreateOptions{Name: "A"})
	b := mustCreate(t, db, CreateOptions{Name: "B", Parent: a.ID()})

	res, err := db.DeleteQuest(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID()}, res.SavedIDs)
	assert.Nil(t, b.Parent)
	assert.Equal(t, 1, db.Len())
}

func TestDelete_ForbiddenForNonOwner(t *testing.T) {
	ctx := context.Background()
	gmDB, s := newTestDB(t, gm)
	a := mustCreate(t, gmDB, CreateOptions{
		Name:      "A",
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver},
	})

	playerDB := NewDB(s, player, zap.NewNop())
	require.NoError(t, playerDB.Load(ctx))

	_, err := playerDB.DeleteQuest(ctx, a.ID())
	require.ErrorIs(t, err, ErrForbidden)

	_, err = s.GetEntryByID(ctx, a.ID())
	assert.NoError(t, err)
}

func TestDelete_ForbiddenWhenFamilyNotWritable(t *testing.T) {
	ctx := context.Background()
	gmDB, s := newTestDB(t, gm)

	observed := model.Ownership{model.DefaultOwnerKey: model.PermissionObserver}
	p := mustCreate(t, gmDB, CreateOptions{Name: "P", Ownership: observed})
	a := mustCreate(t, gmDB, CreateOptions{
		Name:      "A",
		Parent:    p.ID(),
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver, player.ID: model.PermissionOwner},
	})
	b := mustCreate(t, gmDB, CreateOptions{Name: "B", Parent: a.ID(), Ownership: observed})

	playerDB := NewDB(s, player, zap.NewNop())
	require.NoError(t, playerDB.Load(ctx))
	require.True(t, playerDB.GetQuest(a.ID()).IsOwner(player))

	res, err := playerDB.DeleteQuest(ctx, a.ID())
	require.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, res.SavedIDs)

	// Nothing changed in memory.
	require.NotNil(t, playerDB.GetQuest(a.ID()))
	assert.Equal(t, []string{a.ID()}, playerDB.GetQuest(p.ID()).Subquests)
	assert.Equal(t, []string{b.ID()}, playerDB.GetQuest(a.ID()).Subquests)
	assert.Equal(t, a.ID(), playerDB.GetQuest(b.ID()).ParentID())

	// Nothing changed in storage.
	_, err = s.GetEntryByID(ctx, a.ID())
	require.NoError(t, err)
	fresh := NewDB(s, gm, zap.NewNop())
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, 3, fresh.Len())
	assert.Equal(t, []string{a.ID()}, fresh.GetQuest(p.ID()).Subquests)
	assert.Equal(t, a.ID(), fresh.GetQuest(b.ID()).ParentID())
}

func TestDelete_ForbiddenWhenSubquestNotWritable(t *testing.T) {
	ctx := context.Background()
	gmDB, s := newTestDB(t, gm)

	a := mustCreate(t, gmDB, CreateOptions{
		Name:      "A",
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver, player.ID: model.PermissionOwner},
	})
	b := mustCreate(t, gmDB, CreateOptions{
		Name:      "B",
		Parent:    a.ID(),
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver},
	})

	playerDB := NewDB(s, player, zap.NewNop())
	require.NoError(t, playerDB.Load(ctx))

	_, err := playerDB.DeleteQuest(ctx, a.ID())
	require.ErrorIs(t, err, ErrForbidden)

	fresh := NewDB(s, gm, zap.NewNop())
	require.NoError(t, fresh.Load(ctx))
	require.NotNil(t, fresh.GetQuest(a.ID()))
	assert.Equal(t, a.ID(), fresh.GetQuest(b.ID()).ParentID())
}

func TestSave_Outcomes(t *testing.T) {
	ctx := context.Background()
	gmDB, s := newTestDB(t, gm)

	q := mustCreate(t, gmDB, CreateOptions{
		Name:      "Visible",
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver},
	})

	q.Name = ""
	out, err := q.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, out)
	assert.Equal(t, model.DefaultQuestName, q.Entry().Name)

	playerDB := NewDB(s, player, zap.NewNop())
	require.NoError(t, playerDB.Load(ctx))
	pq := playerDB.GetQuest(q.ID())
	require.NotNil(t, pq)

	pq.Description = "changed by player"
	out, err = pq.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedNoPermission, out)
	assert.True(t, out.Skipped())

	require.NoError(t, s.DeleteEntry(ctx, q.ID()))
	out, err = q.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedNoEntry, out)
}

func TestMove_SetsStatus(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t, gm)
	q := mustCreate(t, db, CreateOptions{Name: "Q"})
	assert.Equal(t, model.StatusInactive, q.Status)

	out, err := q.Move(ctx, model.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, out)

	require.NoError(t, q.Refresh(ctx))
	assert.Equal(t, model.StatusActive, q.Status)
}

func TestRefresh_PreservesIdentity(t *testing.T) {
	ctx := context.Background()
	db, s := newTestDB(t, gm)
	q := mustCreate(t, db, CreateOptions{Name: "Q"})

	other := NewDB(s, gm, zap.NewNop())
	require.NoError(t, other.Load(ctx))
	oq := other.GetQuest(q.ID())
	require.True(t, oq.AddTask(model.TaskRecord{Name: "Find the key"}))
	_, err := oq.Save(ctx)
	require.NoError(t, err)

	held := db.GetQuest(q.ID())
	require.NoError(t, db.Reload(ctx, q.ID()))
	assert.Same(t, held, db.GetQuest(q.ID()))
	require.Len(t, held.Tasks, 1)
	assert.Equal(t, "Find the key", held.Tasks[0].Name)
}

func TestSortCollect(t *testing.T) {
	db, _ := newTestDB(t, gm)
	mustCreate(t, db, CreateOptions{Name: "bravo", Status: model.StatusActive})
	mustCreate(t, db, CreateOptions{Name: "Alpha", Status: model.StatusActive})
	mustCreate(t, db, CreateOptions{Name: "Charlie", Status: model.StatusCompleted})

	active := db.SortCollect(CollectOptions{Status: model.StatusActive})
	names := Transform(active, func(q *Quest) string { return q.Name })
	assert.Equal(t, []string{"Alpha", "bravo"}, names)

	all := db.SortCollect(CollectOptions{})
	assert.Len(t, all, 3)

	done := all.Filter(func(q *Quest) bool { return q.Status == model.StatusCompleted })
	require.Len(t, done, 1)
	assert.Equal(t, "Charlie", done[0].Name)
}

func TestSortCollect_ObservableOnly(t *testing.T) {
	ctx := context.Background()
	gmDB, s := newTestDB(t, gm)
	mustCreate(t, gmDB, CreateOptions{Name: "Secret"})
	mustCreate(t, gmDB, CreateOptions{
		Name:      "Public",
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver},
	})

	playerDB := NewDB(s, player, zap.NewNop())
	require.NoError(t, playerDB.Load(ctx))
	got := playerDB.SortCollect(CollectOptions{Observable: true})
	require.Len(t, got, 1)
	assert.Equal(t, "Public", got[0].Name)
}

func TestCreateQuest_PlayerForbidden(t *testing.T) {
	db, _ := newTestDB(t, player)
	_, err := db.CreateQuest(context.Background(), CreateOptions{Name: "Nope"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateQuest_TrustedPlayerOwnsQuest(t *testing.T) {
	trusted := model.User{ID: "t1", Role: model.RoleTrusted}
	db, _ := newTestDB(t, trusted)
	q := mustCreate(t, db, CreateOptions{Name: "Mine"})
	assert.True(t, q.IsOwner(trusted))
	assert.False(t, q.IsOwner(player))
}

func TestCreateQuest_ForbiddenUnderUnwritableParent(t *testing.T) {
	ctx := context.Background()
	gmDB, s := newTestDB(t, gm)
	p := mustCreate(t, gmDB, CreateOptions{
		Name:      "P",
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver},
	})

	trusted := model.User{ID: "t1", Role: model.RoleTrusted}
	trustedDB := NewDB(s, trusted, zap.NewNop())
	require.NoError(t, trustedDB.Load(ctx))

	_, err := trustedDB.CreateQuest(ctx, CreateOptions{Name: "C", Parent: p.ID()})
	require.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, trustedDB.GetQuest(p.ID()).Subquests)
	assert.Equal(t, 1, trustedDB.Len())

	fresh := NewDB(s, gm, zap.NewNop())
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, 1, fresh.Len())
	assert.Empty(t, fresh.GetQuest(p.ID()).Subquests)
}

func TestCreateQuest_TrustedPlayerUnderOwnParent(t *testing.T) {
	ctx := context.Background()
	trusted := model.User{ID: "t1", Role: model.RoleTrusted}
	db, s := newTestDB(t, trusted)

	p := mustCreate(t, db, CreateOptions{Name: "P"})
	c := mustCreate(t, db, CreateOptions{Name: "C", Parent: p.ID()})

	fresh := NewDB(s, gm, zap.NewNop())
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, []string{c.ID()}, fresh.GetQuest(p.ID()).Subquests)
	assert.Equal(t, p.ID(), fresh.GetQuest(c.ID()).ParentID())
}

func TestImport_ReplacesExistingQuest(t *testing.T) {
	ctx := context.Background()
	db, s := newTestDB(t, gm)

	_, err := db.Import(ctx, "imported", model.NewQuest("First"))
	require.NoError(t, err)
	q, err := db.Import(ctx, "imported", model.NewQuest("Second"))
	require.NoError(t, err)
	assert.Equal(t, "Second", q.Name)

	entry, err := s.GetEntryByID(ctx, "imported")
	require.NoError(t, err)
	assert.Equal(t, "Second", entry.Name)

	fresh := NewDB(s, gm, zap.NewNop())
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, 1, fresh.Len())
	assert.Equal(t, "Second", fresh.GetQuest("imported").Name)
}

func TestFolder_InitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	f := NewFolder(s, zap.NewNop())

	exists, err := f.FolderExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	first, err := f.InitializeJournals(ctx)
	require.NoError(t, err)
	second, err := f.InitializeJournals(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	folders, err := s.GetFolders(ctx)
	require.NoError(t, err)
	assert.Len(t, folders, 1)

	exists, err = f.FolderExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoad_WithoutFolderIsEmpty(t *testing.T) {
	db, _ := newTestDB(t, gm)
	require.NoError(t, db.Load(context.Background()))
	assert.Zero(t, db.Len())
}
