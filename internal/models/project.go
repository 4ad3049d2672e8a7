package models

import "time"

// ProjectStatus is the project lifecycle state
type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "DRAFT"
	ProjectStatusInProgress ProjectStatus = "IN_PROGRESS"
	ProjectStatusCompleted  ProjectStatus = "COMPLETED"
)

// Valid reports whether s is a known status
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

// IsActive is true for projects still being worked on
func (s ProjectStatus) IsActive() bool {
	return s == ProjectStatusDraft || s == ProjectStatusInProgress
}

// Project belongs to a family and is owned by one child.
// CoverImage is an emoji, a remote URL or a storage key.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Grade       string        `json:"grade,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	CoverImage  string        `json:"coverImage,omitempty"`
	Status      ProjectStatus `json:"status"`
	Progress    int           `json:"progress"`
	FamilyID    string        `json:"familyId"`
	OwnerID     string        `json:"ownerId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	Owner    *UserSummary  `json:"owner,omitempty"`
	Research []Research    `json:"research,omitempty"`
	Notes    []Note        `json:"notes,omitempty"`
	Chats    []ChatSession `json:"chats,omitempty"`
}

// Note is free text attached to a project
type Note struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
