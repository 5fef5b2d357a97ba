package model

import (
	"fmt"
	"strings"
)

// Role is a user's table role. Higher roles include the rights of lower ones.
type Role int

// Roles.
const (
	RolePlayer Role = iota + 1
	RoleTrusted
	RoleAssistant
	RoleGameMaster
)

var roleNames = map[Role]string{
	RolePlayer:     "player",
	RoleTrusted:    "trusted",
	RoleAssistant:  "assistant",
	RoleGameMaster: "gamemaster",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts a role name into a Role.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "gm":
		return RoleGameMaster, nil
	case "":
		return RolePlayer, nil
	}
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// User is the acting user of a client.
type User struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
	Role Role   `mapstructure:"-" yaml:"-"`
}

// IsGM reports whether the user holds a privileged role.
func (u User) IsGM() bool {
	return u.Role >= RoleAssistant
}
