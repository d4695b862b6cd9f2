package enums

import "fmt"

// UserRole maps to the user_role enum in Postgres.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleOperations UserRole = "operations"
	UserRoleVendor     UserRole = "vendor"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleOperations,
	UserRoleVendor,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value matches the canonical user_role enum.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// CanManageGroups reports whether the role may create groups and move stages.
func (u UserRole) CanManageGroups() bool {
	return u == UserRoleAdmin || u == UserRoleOperations
}

// ParseUserRole converts raw input into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
