package database

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies the embedded migrations for the connection's dialect
func (db *DB) RunMigrations() error {
	sub, err := fs.Sub(migrationsFS, path.Join("migrations", db.Dialect.MigrationsSubdir()))
	if err != nil {
		return fmt.Errorf("failed to open migrations for %s: %w", db.Dialect.MigrationsSubdir(), err)
	}
	return db.RunMigrationsFS(sub)
}

// RunMigrationsFS executes every *.sql file in fsys in lexical order, skipping
// files already recorded in the migrations table
func (db *DB) RunMigrationsFS(fsys fs.FS) error {
	if _, err := db.Exec(db.Dialect.CreateMigrationsTableQuery()); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, filename := range files {
		hasRun, err := db.hasMigrationRun(filename)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if hasRun {
			continue
		}

		content, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		if err := db.executeMigration(filename, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		log.Printf("Migration completed: %s", filename)
	}

	return nil
}

func (db *DB) hasMigrationRun(filename string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// executeMigration runs each statement of a migration and records it in one
// transaction. Statements are split on ";" because the MySQL driver rejects
// multi-statement Exec calls by default.
func (db *DB) executeMigration(filename, content string) error {
	return db.WithTx(func(tx *Tx) error {
		for _, stmt := range splitStatements(content) {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		_, err := tx.Exec("INSERT INTO migrations (filename) VALUES (?)", filename)
		return err
	})
}

func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
