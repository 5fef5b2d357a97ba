package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/questlog/internal/model"
)

// CreateFolder inserts a new folder and returns it with defaults applied.
func (s *SQLiteStore) CreateFolder(ctx context.Context, folder model.Folder) (model.Folder, error) {
	if strings.TrimSpace(folder.Name) == "" {
		return model.Folder{}, fmt.Errorf("folder name must not be empty")
	}
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	folder.CreatedAt = time.Now().UTC()

	if folder.SortOrder == 0 {
		var maxOrder int
		_ = s.db.GetContext(ctx, &maxOrder,
			"SELECT COALESCE(MAX(sort_order), 0) FROM folders")
		folder.SortOrder = maxOrder + 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO folders (id, name, sort_order, created_at)
		VALUES (?, ?, ?, ?)`,
		folder.ID, folder.Name, folder.SortOrder, folder.CreatedAt,
	)
	if err != nil {
		return model.Folder{}, fmt.Errorf("creating folder %q: %w", folder.Name, err)
	}
	return folder, nil
}

// GetFolders retrieves all folders ordered by sort_order.
func (s *SQLiteStore) GetFolders(ctx context.Context) ([]model.Folder, error) {
	var folders []model.Folder
	err := s.db.SelectContext(ctx, &folders,
		"SELECT id, name, sort_order, created_at FROM folders ORDER BY sort_order")
	if err != nil {
		return nil, fmt.Errorf("querying folders: %w", err)
	}
	return folders, nil
}

// GetFolderByName retrieves a folder by its unique name.
func (s *SQLiteStore) GetFolderByName(
	ctx context.Context,
	name string,
) (*model.Folder, error) {
	var folder model.Folder
	err := s.db.GetContext(ctx, &folder,
		"SELECT id, name, sort_order, created_at FROM folders WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting folder %q: %w", name, err)
	}
	return &folder, nil
}

// DeleteFolder removes a folder. Entries in it keep existing with no folder.
func (s *SQLiteStore) DeleteFolder(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting folder %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	return nil
}
