package database

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect hides the differences between the supported SQL backends.
// Repositories always write ? placeholders.
type Dialect interface {
	DriverName() string
	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders to the backend's syntax
	RewriteQuery(query string) string

	// ConfigureConnection sets pool limits and session pragmas
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the embedded migrations directory
	MigrationsSubdir() string
	CreateMigrationsTableQuery() string

	BoolValue(b bool) string
	IsUniqueViolation(err error) bool
}

// DialectConfig locates the database. SQLite uses Path, the servers use URL.
type DialectConfig struct {
	Path string
	URL  string
}

// numberPlaceholders rewrites ? to $1, $2, ... leaving quoted literals alone
func numberPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
