package repository

import (
	"database/sql"
	"fmt"

	"researchnest/internal/database"
	"researchnest/internal/models"
)

const noteColumns = `id, project_id, user_id, title, content, created_at, updated_at`

// NoteRepository handles database operations for project notes
type NoteRepository struct {
	db *database.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *database.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func scanNote(s rowScanner) (*models.Note, error) {
	var (
		n             models.Note
		userID, title sql.NullString
	)
	if err := s.Scan(&n.ID, &n.ProjectID, &userID, &title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.UserID = userID.String
	n.Title = title.String
	return &n, nil
}

// CreateNote inserts a note
func (r *NoteRepository) CreateNote(n *models.Note) error {
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
		n.UpdatedAt = n.CreatedAt
	}
	query := `INSERT INTO notes (` + noteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, n.ID, n.ProjectID, nullString(n.UserID), nullString(n.Title), n.Content, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// GetNoteByID retrieves a note by ID
func (r *NoteRepository) GetNoteByID(id string) (*models.Note, error) {
	n, err := scanNote(r.db.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return n, nil
}

// UpdateNote replaces a note's title and content
func (r *NoteRepository) UpdateNote(n *models.Note) error {
	n.UpdatedAt = now()
	_, err := r.db.Exec("UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?",
		nullString(n.Title), n.Content, n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// DeleteNote removes a note
func (r *NoteRepository) DeleteNote(id string) error {
	if _, err := r.db.Exec("DELETE FROM notes WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// ListNotesByProject returns a project's notes, most recently edited first
func (r *NoteRepository) ListNotesByProject(projectID string) ([]models.Note, error) {
	return r.listNotes(`SELECT `+noteColumns+` FROM notes WHERE project_id = ? ORDER BY updated_at DESC`, projectID)
}

// ListAllNotes returns every note
func (r *NoteRepository) ListAllNotes() ([]models.Note, error) {
	return r.listNotes(`SELECT ` + noteColumns + ` FROM notes ORDER BY created_at ASC`)
}

func (r *NoteRepository) listNotes(query string, args ...interface{}) ([]models.Note, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}
