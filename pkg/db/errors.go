package db

import "strings"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. SQLite and Postgres phrase these differently.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
