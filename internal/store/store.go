package store

import (
	"context"
	"errors"

	"github.com/nhle/questlog/internal/model"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// EntryFilter controls filtering and ordering for entry queries.
type EntryFilter struct {
	FolderID *string // folder ID or nil (all)
	Query    *string // search entry name
	SortBy   string  // "name", "created_at", "updated_at"
	SortDesc bool
	Limit    int
	Offset   int
}

// Store defines the persistence interface for journal folders, entries,
// world settings and broadcast notifications.
type Store interface {
	// === Folders ===

	CreateFolder(ctx context.Context, folder model.Folder) (model.Folder, error)
	GetFolders(ctx context.Context) ([]model.Folder, error)
	GetFolderByName(ctx context.Context, name string) (*model.Folder, error)
	DeleteFolder(ctx context.Context, id string) error

	// === Entries ===

	CreateEntry(ctx context.Context, entry model.Entry) (model.Entry, error)
	UpdateEntry(ctx context.Context, id string, patch model.EntryPatch) (*model.Entry, error)
	ReplaceEntry(ctx context.Context, entry model.Entry) (model.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	GetEntryByID(ctx context.Context, id string) (*model.Entry, error)
	GetEntries(ctx context.Context, filter EntryFilter) ([]model.Entry, error)

	// === Settings ===

	GetSettings(ctx context.Context, namespace string) (map[string]string, error)
	GetSetting(ctx context.Context, namespace, key string) (string, error)
	SetSetting(ctx context.Context, namespace, key, value string) error

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) (int64, error)
	GetNotificationsAfter(ctx context.Context, afterID int64, excludeClient string) ([]model.Notification, error)
	LatestNotificationID(ctx context.Context) (int64, error)
	PruneNotifications(ctx context.Context, keep int) error
}
