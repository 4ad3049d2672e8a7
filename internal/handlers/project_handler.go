package handlers

import (
	"errors"
	"net/http"

	"researchnest/internal/service"
)

// ProjectHandler serves projects and the research and notes inside them
type ProjectHandler struct {
	projectService  *service.ProjectService
	researchService *service.ResearchService
	noteService     *service.NoteService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *service.ProjectService, researchService *service.ResearchService, noteService *service.NoteService) *ProjectHandler {
	return &ProjectHandler{
		projectService:  projectService,
		researchService: researchService,
		noteService:     noteService,
	}
}

// CreateProject creates a DRAFT project for a family member
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in service.CreateProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	project, err := h.projectService.Create(r.Context(), callerFromContext(r.Context()), r.PathValue("familyId"), in)
	if err != nil {
		respondWithServiceError(w, "Error creating project", err)
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// UpdateProject applies a partial update
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	project, err := h.projectService.Update(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), in)
	if err != nil {
		respondWithServiceError(w, "Error updating project", err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// ProjectDetails returns a project with owner, research, notes and chats
func (h *ProjectHandler) ProjectDetails(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.GetDetails(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"))
	if err != nil {
		respondWithServiceError(w, "Error fetching project details", err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// CreateResearch adds a research entry to a project
func (h *ProjectHandler) CreateResearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Criteria string `json:"criteria"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	research, err := h.researchService.Create(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), req.Title, req.Criteria)
	if err != nil {
		respondWithServiceError(w, "Error creating research", err)
		return
	}
	respondJSON(w, http.StatusCreated, research)
}

// GetResearch returns a research entry with its links and rendered summary
func (h *ProjectHandler) GetResearch(w http.ResponseWriter, r *http.Request) {
	research, err := h.researchService.Get(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), r.PathValue("researchId"))
	if err != nil {
		respondWithServiceError(w, "Error fetching research", err)
		return
	}
	respondJSON(w, http.StatusOK, research)
}

// AddLink collects a source into a research entry
func (h *ProjectHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	var in service.LinkInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	link, err := h.researchService.AddLink(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), r.PathValue("researchId"), in)
	if err != nil {
		respondWithServiceError(w, "Error adding link", err)
		return
	}
	respondJSON(w, http.StatusCreated, link)
}

// DeleteLink removes a source
func (h *ProjectHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	err := h.researchService.DeleteLink(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), r.PathValue("researchId"), r.PathValue("linkId"))
	if err != nil {
		respondWithServiceError(w, "Error deleting link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summarize generates and stores a cited summary of the entry's sources
func (h *ProjectHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	research, err := h.researchService.Summarize(r.Context(), callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), r.PathValue("researchId"))
	if err == nil || errors.Is(err, service.ErrSummaryFailed) {
		observeAI("summary", err)
	}
	if err != nil {
		respondWithServiceError(w, "Error summarizing research", err)
		return
	}
	respondJSON(w, http.StatusOK, research)
}

// CreateNote adds a note to a project
func (h *ProjectHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in service.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	note, err := h.noteService.Create(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), in)
	if err != nil {
		respondWithServiceError(w, "Error creating note", err)
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

// UpdateNote replaces a note's title and content
func (h *ProjectHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var in service.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	note, err := h.noteService.Update(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), r.PathValue("noteId"), in)
	if err != nil {
		respondWithServiceError(w, "Error updating note", err)
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// DeleteNote removes a note
func (h *ProjectHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	err := h.noteService.Delete(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("projectId"), r.PathValue("noteId"))
	if err != nil {
		respondWithServiceError(w, "Error deleting note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
