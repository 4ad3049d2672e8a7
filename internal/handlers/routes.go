package handlers

import (
	"net/http"

	"researchnest/internal/models"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Auth     *AuthHandler
	Family   *FamilyHandler
	Project  *ProjectHandler
	Chat     *ChatHandler
	Generate *GenerateHandler
	Media    *MediaHandler
	Page     *PageHandler
}

// NewRouter registers every route on a new ServeMux and wraps it with
// request logging
func NewRouter(m *Middleware, h Handlers) http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /healthz", h.Page.Healthz)
	mux.Handle("GET /metrics", MetricsHandler())
	mux.HandleFunc("GET /sign-in", h.Page.SignIn)
	mux.HandleFunc("POST /api/register", m.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/login", m.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/logout", h.Auth.Logout)
	mux.HandleFunc("POST /api/password/forgot", m.RateLimit(h.Auth.ForgotPassword))
	mux.HandleFunc("POST /api/password/reset", m.RateLimit(h.Auth.ResetPassword))
	mux.HandleFunc("GET /api/check-username", h.Family.CheckUsername)

	// Session
	mux.HandleFunc("GET /api/session", m.RequireAuth(h.Auth.Session))

	// Family and children
	mux.HandleFunc("GET /api/family/{familyId}", m.RequireAuth(h.Family.GetFamily))
	mux.HandleFunc("POST /api/family/{familyId}/children", m.Protected(h.Family.CreateChild))
	mux.HandleFunc("POST /api/family/{familyId}/children/{childId}/reset-password", m.Protected(h.Family.ResetChildPassword))
	mux.HandleFunc("GET /api/student/{studentId}", m.RequireAuth(h.Family.GetStudent))

	// Projects
	mux.HandleFunc("POST /api/family/{familyId}/projects", m.Protected(h.Project.CreateProject))
	mux.HandleFunc("PATCH /api/family/{familyId}/projects/{projectId}", m.Protected(h.Project.UpdateProject))
	mux.HandleFunc("GET /api/family/{familyId}/projects/{projectId}/project-details", m.RequireAuth(h.Project.ProjectDetails))

	// Research and notes
	mux.HandleFunc("POST /api/family/{familyId}/projects/{projectId}/research", m.Protected(h.Project.CreateResearch))
	mux.HandleFunc("GET /api/family/{familyId}/projects/{projectId}/research/{researchId}", m.RequireAuth(h.Project.GetResearch))
	mux.HandleFunc("POST /api/family/{familyId}/projects/{projectId}/research/{researchId}/links", m.Protected(h.Project.AddLink))
	mux.HandleFunc("DELETE /api/family/{familyId}/projects/{projectId}/research/{researchId}/links/{linkId}", m.Protected(h.Project.DeleteLink))
	mux.HandleFunc("POST /api/family/{familyId}/projects/{projectId}/research/{researchId}/summary", m.Protected(h.Project.Summarize))
	mux.HandleFunc("POST /api/family/{familyId}/projects/{projectId}/notes", m.Protected(h.Project.CreateNote))
	mux.HandleFunc("PUT /api/family/{familyId}/projects/{projectId}/notes/{noteId}", m.Protected(h.Project.UpdateNote))
	mux.HandleFunc("DELETE /api/family/{familyId}/projects/{projectId}/notes/{noteId}", m.Protected(h.Project.DeleteNote))

	// Media
	mux.HandleFunc("GET /api/family/{familyId}/media/{key...}", m.RequireAuth(h.Media.Serve))

	// Chat
	mux.HandleFunc("POST /api/chat", m.Protected(h.Chat.Send))
	mux.HandleFunc("GET /api/chat", m.RequireAuth(h.Chat.List))
	mux.HandleFunc("GET /api/chat/{chatId}", m.RequireAuth(h.Chat.Get))

	// Generation
	mux.HandleFunc("POST /api/generate/generate-description", m.Protected(h.Generate.Description))
	mux.HandleFunc("POST /api/generate/generate-project-image", m.Protected(h.Generate.ProjectImage))

	// Role-gated pages
	mux.HandleFunc("GET /parent/", m.RequirePage(models.UserTypeParent, h.Page.Page))
	mux.HandleFunc("GET /student/", m.RequirePage(models.UserTypeChild, h.Page.Page))
	mux.HandleFunc("GET /admin/", m.RequirePage(models.UserTypeAdmin, h.Page.Page))

	return Logging(mux)
}
