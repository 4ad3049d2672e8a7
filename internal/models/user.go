package models

import "time"

// UserType is the account role
type UserType string

const (
	UserTypeParent UserType = "PARENT"
	UserTypeChild  UserType = "CHILD"
	UserTypeAdmin  UserType = "ADMIN"
)

// Valid reports whether t is a known role
func (t UserType) Valid() bool {
	switch t {
	case UserTypeParent, UserTypeChild, UserTypeAdmin:
		return true
	}
	return false
}

// User is a parent, child or admin account. Email is empty (NULL in the
// database) for children created without one.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Type         UserType  `json:"type"`
	Avatar       string    `json:"avatar,omitempty"`
	Color        string    `json:"color,omitempty"`
	FamilyID     string    `json:"familyId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the owner shape embedded in project views
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Summary returns the public owner fields of u
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Avatar: u.Avatar}
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Rewards holds a child's gamification counters
type Rewards struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Points    int       `json:"points"`
	Stars     int       `json:"stars"`
	Streak    int       `json:"streak"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentProfile is the aggregate returned for a child's own dashboard
type StudentProfile struct {
	User
	Projects []Project `json:"projects"`
	Rewards  *Rewards  `json:"rewards"`
}
