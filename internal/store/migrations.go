package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS folders (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	folder_id   TEXT REFERENCES folders(id) ON DELETE SET NULL,
	ownership   TEXT NOT NULL DEFAULT '{}',
	flags       TEXT NOT NULL DEFAULT '{}',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_folder_id ON entries(folder_id);
CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(name);

CREATE TABLE IF NOT EXISTS settings (
	namespace   TEXT NOT NULL,
	key         TEXT NOT NULL,
	value       TEXT NOT NULL DEFAULT '',
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (namespace, key)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS notifications (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id   TEXT NOT NULL,
	kind        TEXT NOT NULL CHECK(kind IN ('refresh_quest', 'refresh_all')),
	quest_id    TEXT NOT NULL DEFAULT '',
	focus       INTEGER NOT NULL DEFAULT 0 CHECK(focus IN (0, 1)),
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_client ON notifications(client_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
