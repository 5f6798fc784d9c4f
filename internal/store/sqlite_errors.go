package store

import "strings"

// isSQLiteConflict checks if the error is a SQLite concurrency error
// (SQLITE_BUSY or "database is locked") that typically warrants retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
