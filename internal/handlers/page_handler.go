package handlers

import (
	"net/http"
)

// PageHandler serves the role-gated page prefixes and the public pages
type PageHandler struct{}

// NewPageHandler creates a new page handler
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Page describes the gated page the session reached
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"page": r.URL.Path,
		"user": map[string]string{
			"id":       claims.UserID,
			"type":     claims.Type,
			"familyId": claims.FamilyID,
			"username": claims.Username,
		},
	})
}

// SignIn is the public sign-in page. It echoes the callback the gate set.
func (h *PageHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"page":        SignInPath,
		"callbackUrl": r.URL.Query().Get("callbackUrl"),
	})
}

// Healthz reports liveness
func (h *PageHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
