package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Permissions(t *testing.T) {
	gm := User{ID: "gm", Role: RoleGameMaster}
	owner := User{ID: "alice", Role: RolePlayer}
	other := User{ID: "bob", Role: RolePlayer}

	e := &Entry{Ownership: Ownership{
		DefaultOwnerKey: PermissionObserver,
		"alice":         PermissionOwner,
	}}

	assert.True(t, e.TestUserPermission(gm, PermissionOwner, false))
	assert.True(t, e.TestUserPermission(owner, PermissionOwner, false))
	assert.True(t, e.TestUserPermission(other, PermissionObserver, false))
	assert.False(t, e.TestUserPermission(other, PermissionOwner, false))
	assert.False(t, e.TestUserPermission(owner, PermissionObserver, true))

	assert.True(t, e.CanUserModify(gm, ActionUpdate))
	assert.True(t, e.CanUserModify(owner, ActionUpdate))
	assert.False(t, e.CanUserModify(other, ActionUpdate))
	assert.False(t, e.CanUserModify(other, "rename"))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("GM")
	assert.NoError(t, err)
	assert.Equal(t, RoleGameMaster, r)
	assert.True(t, User{Role: r}.IsGM())
	assert.True(t, User{Role: RoleAssistant}.IsGM())
	assert.False(t, User{Role: RoleTrusted}.IsGM())

	_, err = ParseRole("dragon")
	assert.Error(t, err)
}
