package models

import "time"

// Chat message roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatSession is a persona-tagged conversation owned by a user
type ChatSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	ProjectID string        `json:"projectId,omitempty"`
	Persona   string        `json:"persona"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Messages  []ChatMessage `json:"messages,omitempty"`
}

// ChatMessage is a single turn
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"chatId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
