package handlers

import (
	"errors"
	"net/http"

	"researchnest/internal/service"
)

// GenerateHandler serves AI-written descriptions and cover images
type GenerateHandler struct {
	generateService *service.GenerateService
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(generateService *service.GenerateService) *GenerateHandler {
	return &GenerateHandler{generateService: generateService}
}

// Description writes a project description
func (h *GenerateHandler) Description(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectName string `json:"projectName"`
		Category    string `json:"category"`
		GradeLevel  string `json:"gradeLevel"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	description, err := h.generateService.Description(r.Context(), req.ProjectName, req.Category, req.GradeLevel)
	if !errors.Is(err, service.ErrProjectNameRequired) {
		observeAI("description", err)
	}
	if err != nil {
		respondWithServiceError(w, "Error generating description", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"description": description})
}

// ProjectImage generates a cover image and returns its temporary URL
func (h *GenerateHandler) ProjectImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectName string `json:"projectName"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	imageURL, err := h.generateService.ProjectImage(r.Context(), req.ProjectName, req.Description, req.Category)
	if !errors.Is(err, service.ErrProjectNameRequired) {
		observeAI("image", err)
	}
	if err != nil {
		respondWithServiceError(w, "Error generating image", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "imageUrl": imageURL})
}
