package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/questlog/internal/model"
)

// entryColumns is the column order shared by every entry SELECT.
const entryColumns = "id, name, folder_id, ownership, flags, created_at, updated_at"

// CreateEntry inserts a new journal entry. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry model.Entry) (model.Entry, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return model.Entry{}, fmt.Errorf("entry name must not be empty")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Ownership == nil {
		entry.Ownership = model.Ownership{}
	}
	if entry.Flags == nil {
		entry.Flags = map[string]json.RawMessage{}
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	ownership, err := marshalColumn(entry.Ownership, "ownership")
	if err != nil {
		return model.Entry{}, err
	}
	flags, err := marshalColumn(entry.Flags, "flags")
	if err != nil {
		return model.Entry{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (id, name, folder_id, ownership, flags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.FolderID, ownership, flags,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return model.Entry{}, fmt.Errorf("creating entry: %w", err)
	}
	return entry, nil
}

// UpdateEntry applies patch to the entry with the given ID and returns the
// updated entry. Flags are merged per namespace; Ownership replaces the map.
func (s *SQLiteStore) UpdateEntry(
	ctx context.Context,
	id string,
	patch model.EntryPatch,
) (*model.Entry, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := scanEntry(tx.QueryRowxContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("updating entry %s: %w", id, err)
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("entry name must not be empty")
		}
		entry.Name = *patch.Name
	}
	if patch.Ownership != nil {
		entry.Ownership = patch.Ownership
	}
	for ns, raw := range patch.Flags {
		if raw == nil {
			delete(entry.Flags, ns)
			continue
		}
		entry.Flags[ns] = raw
	}
	entry.UpdatedAt = time.Now().UTC()

	ownership, err := marshalColumn(entry.Ownership, "ownership")
	if err != nil {
		return nil, err
	}
	flags, err := marshalColumn(entry.Flags, "flags")
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE entries SET
			name = ?, ownership = ?, flags = ?, updated_at = ?
		WHERE id = ?`,
		entry.Name, ownership, flags, entry.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating entry %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing entry %s: %w", id, err)
	}
	return &entry, nil
}

// ReplaceEntry writes entry under its ID in one transaction, creating it
// or overwriting every field of an existing row. CreatedAt survives a
// replace.
func (s *SQLiteStore) ReplaceEntry(ctx context.Context, entry model.Entry) (model.Entry, error) {
	if strings.TrimSpace(entry.ID) == "" {
		return model.Entry{}, fmt.Errorf("entry id must not be empty")
	}
	if strings.TrimSpace(entry.Name) == "" {
		return model.Entry{}, fmt.Errorf("entry name must not be empty")
	}
	if entry.Ownership == nil {
		entry.Ownership = model.Ownership{}
	}
	if entry.Flags == nil {
		entry.Flags = map[string]json.RawMessage{}
	}
	now := time.Now().UTC()

	ownership, err := marshalColumn(entry.Ownership, "ownership")
	if err != nil {
		return model.Entry{}, err
	}
	flags, err := marshalColumn(entry.Flags, "flags")
	if err != nil {
		return model.Entry{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Entry{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (id, name, folder_id, ownership, flags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			folder_id = excluded.folder_id,
			ownership = excluded.ownership,
			flags = excluded.flags,
			updated_at = excluded.updated_at`,
		entry.ID, entry.Name, entry.FolderID, ownership, flags, now, now,
	)
	if err != nil {
		return model.Entry{}, fmt.Errorf("replacing entry %s: %w", entry.ID, err)
	}

	stored, err := scanEntry(tx.QueryRowxContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?", entry.ID))
	if err != nil {
		return model.Entry{}, fmt.Errorf("replacing entry %s: %w", entry.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Entry{}, fmt.Errorf("committing entry %s: %w", entry.ID, err)
	}
	return stored, nil
}

// DeleteEntry removes an entry by ID.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting entry %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetEntryByID retrieves a single entry by ID.
func (s *SQLiteStore) GetEntryByID(
	ctx context.Context,
	id string,
) (*model.Entry, error) {
	entry, err := scanEntry(s.db.QueryRowxContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("getting entry %s: %w", id, err)
	}
	return &entry, nil
}

// GetEntries retrieves entries matching the filter.
func (s *SQLiteStore) GetEntries(
	ctx context.Context,
	filter EntryFilter,
) ([]model.Entry, error) {
	query, args := buildEntryQuery(filter)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// buildEntryQuery constructs the SQL query and args for an EntryFilter.
func buildEntryQuery(filter EntryFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.FolderID != nil {
		conditions = append(conditions, "folder_id = ?")
		args = append(args, *filter.FolderID)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "name LIKE ?")
		args = append(args, "%"+*filter.Query+"%")
	}

	query := "SELECT " + entryColumns + " FROM entries"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "name"
	if filter.SortBy != "" {
		allowed := map[string]bool{
			"name":       true,
			"created_at": true,
			"updated_at": true,
		}
		if allowed[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, args
}

// rowScanner is satisfied by *sqlx.Row and *sqlx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

var (
	_ rowScanner = (*sqlx.Row)(nil)
	_ rowScanner = (*sqlx.Rows)(nil)
)

// scanEntry scans an entry row selected with entryColumns.
func scanEntry(row rowScanner) (model.Entry, error) {
	var (
		entry     model.Entry
		folderID  *string
		ownership string
		flags     string
	)

	err := row.Scan(
		&entry.ID, &entry.Name, &folderID, &ownership, &flags,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, ErrNotFound
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("scanning entry row: %w", err)
	}

	entry.FolderID = folderID
	entry.Ownership = model.Ownership{}
	entry.Flags = map[string]json.RawMessage{}
	if err := unmarshalColumn(ownership, &entry.Ownership, "ownership"); err != nil {
		return model.Entry{}, err
	}
	if err := unmarshalColumn(flags, &entry.Flags, "flags"); err != nil {
		return model.Entry{}, err
	}

	return entry, nil
}
