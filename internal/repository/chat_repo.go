package repository

import (
	"database/sql"
	"fmt"

	"researchnest/internal/database"
	"researchnest/internal/models"
)

const (
	sessionColumns = `id, user_id, project_id, persona, title, created_at, updated_at`
	messageColumns = `id, session_id, role, content, created_at`
)

// ChatRepository stores chat sessions and their messages
type ChatRepository struct {
	db *database.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *database.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func scanSession(s rowScanner) (*models.ChatSession, error) {
	var (
		cs        models.ChatSession
		projectID sql.NullString
	)
	if err := s.Scan(&cs.ID, &cs.UserID, &projectID, &cs.Persona, &cs.Title, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
		return nil, err
	}
	cs.ProjectID = projectID.String
	return &cs, nil
}

func scanMessage(s rowScanner) (*models.ChatMessage, error) {
	var m models.ChatMessage
	if err := s.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateSession inserts a new chat session
func (r *ChatRepository) CreateSession(cs *models.ChatSession) error {
	if cs.ID == "" {
		cs.ID = newID()
	}
	if cs.CreatedAt.IsZero() {
		cs.CreatedAt = now()
		cs.UpdatedAt = cs.CreatedAt
	}
	query := `INSERT INTO chat_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, cs.ID, cs.UserID, nullString(cs.ProjectID), cs.Persona, cs.Title, cs.CreatedAt, cs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// GetSessionByID retrieves a session without its messages
func (r *ChatRepository) GetSessionByID(id string) (*models.ChatSession, error) {
	cs, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM chat_sessions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return cs, nil
}

// AddMessage appends a message and bumps the session's updated_at
func (r *ChatRepository) AddMessage(m *models.ChatMessage) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	return r.db.WithTx(func(tx *database.Tx) error {
		query := `INSERT INTO chat_messages (` + messageColumns + `) VALUES (?, ?, ?, ?, ?)`
		if _, err := tx.Exec(query, m.ID, m.SessionID, m.Role, m.Content, m.CreatedAt); err != nil {
			return fmt.Errorf("failed to add chat message: %w", err)
		}
		if _, err := tx.Exec("UPDATE chat_sessions SET updated_at = ? WHERE id = ?", m.CreatedAt, m.SessionID); err != nil {
			return fmt.Errorf("failed to touch chat session: %w", err)
		}
		return nil
	})
}

// ListMessages returns a session's messages in chronological order
func (r *ChatRepository) ListMessages(sessionID string) ([]models.ChatMessage, error) {
	return r.listMessages(`SELECT `+messageColumns+` FROM chat_messages WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
}

// ListAllMessages returns every chat message
func (r *ChatRepository) ListAllMessages() ([]models.ChatMessage, error) {
	return r.listMessages(`SELECT ` + messageColumns + ` FROM chat_messages ORDER BY created_at ASC`)
}

func (r *ChatRepository) listMessages(query string, args ...interface{}) ([]models.ChatMessage, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// ListSessionsByProject returns a project's sessions, most recent first
func (r *ChatRepository) ListSessionsByProject(projectID string) ([]models.ChatSession, error) {
	return r.listSessions(`SELECT `+sessionColumns+` FROM chat_sessions WHERE project_id = ? ORDER BY updated_at DESC`, projectID)
}

// ListSessionsByUser returns a user's sessions, most recent first
func (r *ChatRepository) ListSessionsByUser(userID string) ([]models.ChatSession, error) {
	return r.listSessions(`SELECT `+sessionColumns+` FROM chat_sessions WHERE user_id = ? ORDER BY updated_at DESC`, userID)
}

// ListAllSessions returns every chat session
func (r *ChatRepository) ListAllSessions() ([]models.ChatSession, error) {
	return r.listSessions(`SELECT ` + sessionColumns + ` FROM chat_sessions ORDER BY created_at ASC`)
}

func (r *ChatRepository) listSessions(query string, args ...interface{}) ([]models.ChatSession, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.ChatSession
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		sessions = append(sessions, *cs)
	}
	return sessions, rows.Err()
}
