package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"researchnest/internal/models"
	"researchnest/internal/repository"
	"researchnest/internal/security"
	"researchnest/internal/validation"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
	ErrResetTokenUsed     = errors.New("this reset link has already been used")
	ErrResetTokenExpired  = errors.New("this reset link has expired")
)

// ResetTokenLifetime is how long a password reset link stays valid
const ResetTokenLifetime = time.Hour

// RegisterInput is the parent sign-up form
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenManager
	mailer   Mailer
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenManager, mailer Mailer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
	}
}

// Register creates a family named after the parent's last name together
// with its first parent. The parent's username is their email.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *models.Family, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, nil, ErrMissingFields
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(in.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         in.FirstName + " " + in.LastName,
		Username:     in.Email,
		Email:        in.Email,
		PasswordHash: passwordHash,
	}
	family, err := s.userRepo.CreateFamilyWithParent(in.LastName+" Family", user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, nil, ErrEmailTaken
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create family: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return user, family, nil
}

// Login authenticates by email or username
func (s *AuthService) Login(identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByIdentifier(identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs a session token for user
func (s *AuthService) IssueToken(user *models.User) (string, *security.Claims, error) {
	return s.tokens.Issue(user.ID, string(user.Type), user.FamilyID, user.Username, user.Avatar)
}

// ParseToken verifies a session token
func (s *AuthService) ParseToken(token string) (*security.Claims, error) {
	return s.tokens.Parse(token)
}

// SessionDuration is the lifetime of issued tokens
func (s *AuthService) SessionDuration() time.Duration {
	return s.tokens.Duration()
}

// CreateAdmin creates an ADMIN account outside any family
func (s *AuthService) CreateAdmin(name, email, password string) (*models.User, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Name:         name,
		Username:     email,
		Email:        email,
		PasswordHash: passwordHash,
		Type:         models.UserTypeAdmin,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset creates a reset token and emails it. Unknown
// addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.userRepo.DeleteUserPasswordResetTokens(user.ID); err != nil {
		log.Printf("Warning: failed to clear old reset tokens for %s: %v", user.ID, err)
	}
	if err := s.userRepo.CreatePasswordResetToken(token, user.ID, time.Now().Add(ResetTokenLifetime)); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}
	return nil
}

// ResetPassword resets a user's password using a valid token
func (s *AuthService) ResetPassword(token, newPassword string) error {
	resetToken, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil {
		return ErrResetTokenInvalid
	}
	if resetToken.Used {
		return ErrResetTokenUsed
	}
	if resetToken.IsExpired() {
		return ErrResetTokenExpired
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(resetToken.UserID, passwordHash); err != nil {
		return err
	}
	return s.userRepo.MarkPasswordResetTokenAsUsed(token)
}

// CleanupExpiredPasswordResetTokens removes expired reset tokens
func (s *AuthService) CleanupExpiredPasswordResetTokens() error {
	return s.userRepo.DeleteExpiredPasswordResetTokens()
}

func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
