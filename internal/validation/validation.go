package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MinUsernameLength = 3
	MaxUsernameLength = 32
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Error is a user-facing input problem on a single field
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &Error{Field: field, Message: message}
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "Email is required")
	}
	if !emailRegex.MatchString(email) {
		return invalid("email", "Invalid email address")
	}
	return nil
}

// ValidatePassword checks the minimum length shared by parents and children
func ValidatePassword(password string) error {
	if password == "" {
		return invalid("password", "Password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "Name is required")
	}
	if utf8.RuneCountInString(name) < 2 {
		return invalid("name", "Name must be at least 2 characters")
	}
	return nil
}

// ValidateUsername allows letters, numbers and underscores only
func ValidateUsername(username string) error {
	if username == "" {
		return invalid("username", "Username is required")
	}
	if len(username) < MinUsernameLength {
		return invalid("username", fmt.Sprintf("Username must be at least %d characters", MinUsernameLength))
	}
	if len(username) > MaxUsernameLength {
		return invalid("username", fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength))
	}
	if !usernameRegex.MatchString(username) {
		return invalid("username", "Username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidateProgress checks a percentage
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return invalid("progress", "Progress must be between 0 and 100")
	}
	return nil
}
