package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/store"
	"github.com/nhle/questlog/tests/testutil"
)

func TestEntries_CRUD(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	folder, err := s.CreateFolder(ctx, model.Folder{Name: model.QuestFolderName})
	require.NoError(t, err)

	created, err := s.CreateEntry(ctx, model.Entry{
		Name:      "The Lost Amulet",
		FolderID:  &folder.ID,
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver},
		Flags:     map[string]json.RawMessage{"questlog": json.RawMessage(`{"name":"The Lost Amulet"}`)},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetEntryByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Lost Amulet", got.Name)
	assert.Equal(t, folder.ID, *got.FolderID)
	assert.Equal(t, model.PermissionObserver, got.Ownership[model.DefaultOwnerKey])
	assert.JSONEq(t, `{"name":"The Lost Amulet"}`, string(got.Flags["questlog"]))

	name := "The Found Amulet"
	updated, err := s.UpdateEntry(ctx, created.ID, model.EntryPatch{
		Name:  &name,
		Flags: map[string]json.RawMessage{"other": json.RawMessage(`true`)},
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Contains(t, updated.Flags, "questlog")
	assert.Contains(t, updated.Flags, "other")

	entries, err := s.GetEntries(ctx, store.EntryFilter{FolderID: &folder.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, s.DeleteEntry(ctx, created.ID))
	_, err = s.GetEntryByID(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteEntry(ctx, created.ID), store.ErrNotFound)

	_, err = s.UpdateEntry(ctx, created.ID, model.EntryPatch{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntries_EmptyNameRejected(t *testing.T) {
	s := testutil.NewTestStore(t)
	_, err := s.CreateEntry(context.Background(), model.Entry{Name: " "})
	assert.Error(t, err)
}

func TestEntries_Replace(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	first, err := s.ReplaceEntry(ctx, model.Entry{
		ID:        "fixed-id",
		Name:      "Old Road",
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionObserver},
		Flags:     map[string]json.RawMessage{"questlog": json.RawMessage(`{"name":"Old Road"}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", first.ID)
	assert.Equal(t, "Old Road", first.Name)

	second, err := s.ReplaceEntry(ctx, model.Entry{
		ID:        "fixed-id",
		Name:      "New Road",
		Ownership: model.Ownership{model.DefaultOwnerKey: model.PermissionNone},
		Flags:     map[string]json.RawMessage{"questlog": json.RawMessage(`{"name":"New Road"}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, "New Road", second.Name)
	assert.Equal(t, model.PermissionNone, second.Ownership[model.DefaultOwnerKey])
	assert.JSONEq(t, `{"name":"New Road"}`, string(second.Flags["questlog"]))
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	entries, err := s.GetEntries(ctx, store.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "New Road", entries[0].Name)

	_, err = s.ReplaceEntry(ctx, model.Entry{Name: "No ID"})
	assert.Error(t, err)
	_, err = s.ReplaceEntry(ctx, model.Entry{ID: "fixed-id", Name: " "})
	assert.Error(t, err)

	got, err := s.GetEntryByID(ctx, "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, "New Road", got.Name)
}

func TestFolders(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.GetFolderByName(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	a, err := s.CreateFolder(ctx, model.Folder{Name: "a"})
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, model.Folder{Name: "b"})
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, model.Folder{Name: "a"})
	assert.Error(t, err, "folder names are unique")

	folders, err := s.GetFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "a", folders[0].Name)

	got, err := s.GetFolderByName(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.GetSetting(ctx, "questlog", "primaryQuest")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetSetting(ctx, "questlog", "primaryQuest", "q1"))
	require.NoError(t, s.SetSetting(ctx, "questlog", "primaryQuest", "q2"))
	require.NoError(t, s.SetSetting(ctx, "core", "primaryQuest", "other"))

	v, err := s.GetSetting(ctx, "questlog", "primaryQuest")
	require.NoError(t, err)
	assert.Equal(t, "q2", v)

	all, err := s.GetSettings(ctx, "questlog")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"primaryQuest": "q2"}, all)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	first, err := s.CreateNotification(ctx, model.Notification{
		ClientID: "a", Kind: model.NotifyRefreshQuest, QuestID: "q1",
	})
	require.NoError(t, err)
	_, err = s.CreateNotification(ctx, model.Notification{
		ClientID: "b", Kind: model.NotifyRefreshQuest, QuestID: "q2", Focus: true,
	})
	require.NoError(t, err)
	_, err = s.CreateNotification(ctx, model.Notification{ClientID: "b", Kind: model.NotifyRefreshAll})
	require.NoError(t, err)

	got, err := s.GetNotificationsAfter(ctx, 0, "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q2", got[0].QuestID)
	assert.True(t, got[0].Focus)
	assert.Equal(t, model.NotifyRefreshAll, got[1].Kind)

	got, err = s.GetNotificationsAfter(ctx, first, "b")
	require.NoError(t, err)
	assert.Empty(t, got)

	latest, err := s.LatestNotificationID(ctx)
	require.NoError(t, err)
	require.NoError(t, s.PruneNotifications(ctx, 1))

	got, err = s.GetNotificationsAfter(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, latest, got[0].ID)
}
