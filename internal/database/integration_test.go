package database

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("first RunMigrations() error = %v", err)
	}
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 recorded migration, got %d", count)
	}

	for _, table := range []string{"families", "users", "projects", "research", "research_links", "notes", "chat_sessions", "chat_messages", "rewards", "password_reset_tokens", "bad_words"} {
		if _, err := db.Exec("SELECT COUNT(*) FROM " + table); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestUniqueViolationDetectedOnSQLite(t *testing.T) {
	db := openTestDB(t)
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	now := time.Now().UTC()
	insert := "INSERT INTO families (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)"
	if _, err := db.Exec(insert, "f1", "Smith Family", now, now); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	_, err := db.Exec(insert, "f1", "Smith Family", now, now)
	if err == nil {
		t.Fatal("expected duplicate primary key error")
	}
	if !db.Dialect.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestNullEmailsDoNotCollide(t *testing.T) {
	db := openTestDB(t)
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	now := time.Now().UTC()
	insert := `INSERT INTO users (id, name, username, email, password_hash, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'CHILD', ?, ?)`
	if _, err := db.Exec(insert, "u1", "A", "kid_a", nil, "x", now, now); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec(insert, "u2", "B", "kid_b", nil, "x", now, now); err != nil {
		t.Fatalf("second NULL email insert failed: %v", err)
	}
}

func TestBadWordFilter(t *testing.T) {
	db := openTestDB(t)
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	added, err := db.AddBadWords("Meanie", "meanie", "two words", "")
	if err != nil {
		t.Fatalf("AddBadWords() error = %v", err)
	}
	if added != 1 {
		t.Errorf("AddBadWords() added %d, want 1", added)
	}

	// Re-adding is a no-op rather than an error
	if added, err := db.AddBadWords("meanie"); err != nil || added != 0 {
		t.Errorf("AddBadWords() again = %d, %v; want 0, nil", added, err)
	}

	tests := []struct {
		username string
		want     bool
	}{
		{"meanie", true},
		{"MEANIE", true},
		{"super_meanie_99", true},
		{"meanie42", true},
		{"billy", false},
		{"happy_tiger", false},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			got, err := db.ContainsBadWord(tt.username)
			if err != nil {
				t.Fatalf("ContainsBadWord() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ContainsBadWord(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}
