package enums

import (
	"fmt"
	"strings"
)

// UserStatus tracks whether an employee account may sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ativo"
	UserStatusInactive UserStatus = "inativo"
	UserStatusBlocked  UserStatus = "bloqueado"
	UserStatusPending  UserStatus = "pendente"
)

var validUserStatuses = []UserStatus{
	UserStatusActive,
	UserStatusInactive,
	UserStatusBlocked,
	UserStatusPending,
}

func (s UserStatus) String() string {
	return string(s)
}

func (s UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanLogin is true only for active accounts.
func (s UserStatus) CanLogin() bool {
	return s == UserStatusActive
}

func ParseUserStatus(value string) (UserStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validUserStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}
