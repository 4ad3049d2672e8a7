package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"researchnest/internal/database"
	"researchnest/internal/models"
)

// ErrDuplicate is returned when an insert hits a unique constraint
var ErrDuplicate = errors.New("duplicate record")

const userColumns = `id, name, username, email, password_hash, type, avatar, color, family_id, created_at, updated_at`

// UserRepository handles database operations for users and password resets
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(s rowScanner) (*models.User, error) {
	var (
		u                               models.User
		userType                        string
		email, avatar, color, familyID sql.NullString
	)
	err := s.Scan(&u.ID, &u.Name, &u.Username, &email, &u.PasswordHash, &userType,
		&avatar, &color, &familyID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Type = models.UserType(userType)
	u.Email = email.String
	u.Avatar = avatar.String
	u.Color = color.String
	u.FamilyID = familyID.String
	return &u, nil
}

func insertUser(q database.DBTX, u *models.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.Exec(query, u.ID, u.Name, u.Username, nullString(u.Email), u.PasswordHash,
		string(u.Type), nullString(u.Avatar), nullString(u.Color), nullString(u.FamilyID),
		u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if q.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateFamilyWithParent creates a family and its first parent atomically
func (r *UserRepository) CreateFamilyWithParent(familyName string, parent *models.User) (*models.Family, error) {
	family := &models.Family{ID: newID(), Name: familyName}

	err := r.db.WithTx(func(tx *database.Tx) error {
		if err := insertFamily(tx, family); err != nil {
			return err
		}
		parent.FamilyID = family.ID
		parent.Type = models.UserTypeParent
		return insertUser(tx, parent)
	})
	if err != nil {
		parent.FamilyID = ""
		return nil, err
	}
	return family, nil
}

// CreateChild creates a child user and its zeroed rewards row
func (r *UserRepository) CreateChild(child *models.User) error {
	child.Type = models.UserTypeChild
	return r.db.WithTx(func(tx *database.Tx) error {
		if err := insertUser(tx, child); err != nil {
			return err
		}
		return insertRewards(tx, child.ID)
	})
}

// CreateUser inserts a user without family side effects (admins, imports)
func (r *UserRepository) CreateUser(u *models.User) error {
	return insertUser(r.db, u)
}

func (r *UserRepository) getUserWhere(where string, args ...interface{}) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	return r.getUserWhere("id = ?", id)
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	if email == "" {
		return nil, nil
	}
	return r.getUserWhere("email = ?", email)
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	return r.getUserWhere("username = ?", username)
}

// GetUserByIdentifier matches either email or username, preferring email
func (r *UserRepository) GetUserByIdentifier(identifier string) (*models.User, error) {
	user, err := r.GetUserByEmail(identifier)
	if err != nil || user != nil {
		return user, err
	}
	return r.GetUserByUsername(identifier)
}

// UsernameExists reports whether a username is taken
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// EmailExists reports whether an email is taken
func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) listUsers(where string, args ...interface{}) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListUsersByFamily returns family members, oldest first
func (r *UserRepository) ListUsersByFamily(familyID string) ([]models.User, error) {
	return r.listUsers("family_id = ?", familyID)
}

// ListAllUsers returns every user, oldest first
func (r *UserRepository) ListAllUsers() ([]models.User, error) {
	return r.listUsers("")
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(userID, passwordHash string) error {
	_, err := r.db.Exec("UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?", passwordHash, now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// CreatePasswordResetToken stores a reset token
func (r *UserRepository) CreatePasswordResetToken(token, userID string, expiresAt time.Time) error {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, expires_at, used, created_at)
		VALUES (?, ?, ?, ` + r.db.Dialect.BoolValue(false) + `, ?)
	`
	if _, err := r.db.Exec(query, token, userID, expiresAt.UTC(), now()); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetPasswordResetToken retrieves a reset token
func (r *UserRepository) GetPasswordResetToken(token string) (*models.PasswordResetToken, error) {
	query := `SELECT token, user_id, expires_at, used, created_at FROM password_reset_tokens WHERE token = ?`
	t := &models.PasswordResetToken{}
	err := r.db.QueryRow(query, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return t, nil
}

// MarkPasswordResetTokenAsUsed flags a token as consumed
func (r *UserRepository) MarkPasswordResetTokenAsUsed(token string) error {
	query := "UPDATE password_reset_tokens SET used = " + r.db.Dialect.BoolValue(true) + " WHERE token = ?"
	if _, err := r.db.Exec(query, token); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}
	return nil
}

// DeleteUserPasswordResetTokens removes all reset tokens for a user
func (r *UserRepository) DeleteUserPasswordResetTokens(userID string) error {
	if _, err := r.db.Exec("DELETE FROM password_reset_tokens WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}

// DeleteExpiredPasswordResetTokens removes expired reset tokens
func (r *UserRepository) DeleteExpiredPasswordResetTokens() error {
	if _, err := r.db.Exec("DELETE FROM password_reset_tokens WHERE expires_at < ?", now()); err != nil {
		return fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return nil
}
