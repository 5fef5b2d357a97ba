package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetSettings returns every key/value pair stored under namespace.
func (s *SQLiteStore) GetSettings(
	ctx context.Context,
	namespace string,
) (map[string]string, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT key, value FROM settings WHERE namespace = ?", namespace)
	if err != nil {
		return nil, fmt.Errorf("querying settings %s: %w", namespace, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}
		out[key] = value
	}
	return out, rows.Err()
}

// GetSetting returns a single setting value.
func (s *SQLiteStore) GetSetting(
	ctx context.Context,
	namespace, key string,
) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM settings WHERE namespace = ? AND key = ?", namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s.%s: %w", namespace, key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %s.%s: %w", namespace, key, err)
	}
	return value, nil
}

// SetSetting inserts or replaces a setting value.
func (s *SQLiteStore) SetSetting(
	ctx context.Context,
	namespace, key, value string,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting %s.%s: %w", namespace, key, err)
	}
	return nil
}
