package enums

import (
	"fmt"
	"strings"
)

// UserRole is the job function of a store employee.
type UserRole string

const (
	UserRoleManager    UserRole = "gerente"
	UserRolePharmacist UserRole = "farmaceutico"
	UserRoleAssistant  UserRole = "auxiliar"
	UserRoleConsultant UserRole = "consultora"
	UserRoleLead       UserRole = "lider"
)

var validUserRoles = []UserRole{
	UserRoleManager,
	UserRolePharmacist,
	UserRoleAssistant,
	UserRoleConsultant,
	UserRoleLead,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanManageUsers reports whether the role may create or edit store users.
func (r UserRole) CanManageUsers() bool {
	return r == UserRoleManager || r == UserRoleLead
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validUserRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
