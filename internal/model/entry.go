package model

import (
	"encoding/json"
	"time"
)

// Permission is an ownership level on a journal entry.
type Permission int

// Permission levels, lowest first.
const (
	PermissionNone Permission = iota
	PermissionLimited
	PermissionObserver
	PermissionOwner
)

// DefaultOwnerKey holds the level that applies to users without their own entry.
const DefaultOwnerKey = "default"

// Ownership maps user IDs (and DefaultOwnerKey) to permission levels.
type Ownership map[string]Permission

// Level returns the effective level for a user ID.
func (o Ownership) Level(userID string) Permission {
	if lvl, ok := o[userID]; ok {
		return lvl
	}
	return o[DefaultOwnerKey]
}

// Entry modification actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entry is a journal entry: the storage record that backs a quest.
type Entry struct {
	ID        string                     `json:"id" db:"id"`
	Name      string                     `json:"name" db:"name"`
	FolderID  *string                    `json:"folder_id,omitempty" db:"folder_id"`
	Ownership Ownership                  `json:"ownership" db:"-"`
	Flags     map[string]json.RawMessage `json:"flags" db:"-"`
	CreatedAt time.Time                  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at" db:"updated_at"`
}

// EntryPatch carries the fields to change on an entry. Nil fields are left alone;
// Flags are merged per namespace.
type EntryPatch struct {
	Name      *string
	Ownership Ownership
	Flags     map[string]json.RawMessage
}

// TestUserPermission reports whether user holds at least level on the entry,
// or exactly level when exact is set. Privileged users hold every level.
func (e *Entry) TestUserPermission(u User, level Permission, exact bool) bool {
	if u.IsGM() {
		return true
	}
	have := e.Ownership.Level(u.ID)
	if exact {
		return have == level
	}
	return have >= level
}

// CanUserModify reports whether user may perform action on the entry.
func (e *Entry) CanUserModify(u User, action string) bool {
	if u.IsGM() {
		return true
	}
	switch action {
	case ActionCreate:
		return u.Role >= RoleTrusted
	case ActionUpdate, ActionDelete:
		return e.Ownership.Level(u.ID) >= PermissionOwner
	default:
		return false
	}
}

// Flag returns the raw payload stored under namespace.
func (e *Entry) Flag(namespace string) (json.RawMessage, bool) {
	raw, ok := e.Flags[namespace]
	return raw, ok && len(raw) > 0
}
