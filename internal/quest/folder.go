package quest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/store"
)

// Folder locates the reserved journal folder that holds quest entries.
type Folder struct {
	store  store.Store
	logger *zap.Logger
	name   string
}

// NewFolder returns a Folder for the reserved quest folder name.
func NewFolder(s store.Store, logger *zap.Logger) *Folder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Folder{store: s, logger: logger, name: model.QuestFolderName}
}

// Name returns the reserved folder name.
func (f *Folder) Name() string {
	return f.name
}

// FolderExists reports whether the quest folder has been created.
func (f *Folder) FolderExists(ctx context.Context) (bool, error) {
	folder, err := f.Get(ctx)
	if err != nil {
		return false, err
	}
	return folder != nil, nil
}

// Get returns the quest folder, or nil when it does not exist.
func (f *Folder) Get(ctx context.Context) (*model.Folder, error) {
	folder, err := f.store.GetFolderByName(ctx, f.name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up quest folder: %w", err)
	}
	return folder, nil
}

// InitializeJournals creates the quest folder if it is missing.
// Calling it again is a no-op.
func (f *Folder) InitializeJournals(ctx context.Context) (*model.Folder, error) {
	existing, err := f.Get(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := f.store.CreateFolder(ctx, model.Folder{Name: f.name})
	if err != nil {
		return nil, fmt.Errorf("initializing quest folder: %w", err)
	}
	f.logger.Info("quest folder created", zap.String("folder", created.ID))
	return &created, nil
}
