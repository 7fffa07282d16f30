// ABOUTME: Role definitions for user authorization
// ABOUTME: Roles are stored as integer ids matching the seeded roles table

package store

import "fmt"

// Role is a user's privilege level.
type Role int

const (
	RoleAdmin   Role = 1
	RoleMember  Role = 2
	RoleManager Role = 3
)

// DefaultRole is assigned when none is given.
const DefaultRole = RoleMember

// ValidRoles lists all valid roles.
var ValidRoles = []Role{RoleAdmin, RoleMember, RoleManager}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleManager:
		return true
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	case RoleManager:
		return "manager"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts a role name to a Role.
func ParseRole(name string) (Role, error) {
	for _, r := range ValidRoles {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}
