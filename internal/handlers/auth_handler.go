package handlers

import (
	"net/http"
	"strings"
	"time"

	"researchnest/internal/models"
	"researchnest/internal/security"
	"researchnest/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	middleware  *Middleware
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, middleware *Middleware) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		middleware:  middleware,
	}
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	CSRFToken string       `json:"csrfToken"`
}

// startSession issues a token for user and sets the session cookie
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) (string, *security.Claims, error) {
	token, claims, err := h.authService.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, token, claims.ExpiresAt.Time))
	return token, claims, nil
}

// Register handles parent sign-up and logs the new parent in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	user, family, err := h.authService.Register(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, "Error registering user", err)
		return
	}

	token, claims, err := h.startSession(w, r, user)
	if err != nil {
		// the account exists; the client can still sign in normally
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing session token", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "User created successfully",
		"familyId":  family.ID,
		"user":      user,
		"token":     token,
		"csrfToken": h.middleware.CSRFToken(claims),
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// Login authenticates by email or username
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Username
	}

	user, err := h.authService.Login(identifier, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}

	token, claims, err := h.startSession(w, r, user)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing session token", err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		User:      user,
		Token:     token,
		CSRFToken: h.middleware.CSRFToken(claims),
	})
}

// Logout clears the session cookie. Tokens are stateless and simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session returns the current session claims
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]string{
			"id":       claims.UserID,
			"type":     claims.Type,
			"familyId": claims.FamilyID,
			"username": claims.Username,
			"avatar":   claims.Avatar,
		},
		"expires":   claims.ExpiresAt.Time.Format(time.RFC3339),
		"csrfToken": h.middleware.CSRFToken(claims),
	})
}

// ForgotPassword emails a reset link. It always answers 200 so addresses
// cannot be enumerated.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if email := strings.TrimSpace(req.Email); email != "" {
		if err := h.authService.RequestPasswordReset(r.Context(), email); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error requesting password reset", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for that email, a reset link has been sent",
	})
}

// ResetPassword sets a new password from a reset token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.Password); err != nil {
		respondWithServiceError(w, "Error resetting password", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}
