package db

import (
	"strings"

	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
)

const sqlStateUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation. The
// SQLSTATE is checked first; the message fallback covers sqlite and drivers
// that flatten errors to strings. When constraintName is provided it must match.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if state := pkgerrors.SQLState(err); state != "" {
		if state != sqlStateUniqueViolation {
			return false
		}
		if constraintName == "" {
			return true
		}
		return pkgerrors.ConstraintName(err) == constraintName || strings.Contains(err.Error(), constraintName)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return true
}
