package handlers

import (
	"net/http"

	"researchnest/internal/service"
)

// FamilyHandler serves the family aggregate, child accounts and student profiles
type FamilyHandler struct {
	familyService *service.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

// GetFamily returns the family with members, projects and stats
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	family, err := h.familyService.GetFamily(callerFromContext(r.Context()), r.PathValue("familyId"))
	if err != nil {
		respondWithServiceError(w, "Error fetching family", err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// CreateChild adds a child account to the family
func (h *FamilyHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var in service.CreateChildInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	child, err := h.familyService.CreateChild(callerFromContext(r.Context()), r.PathValue("familyId"), in)
	if err != nil {
		respondWithServiceError(w, "Error creating child", err)
		return
	}
	respondJSON(w, http.StatusCreated, child)
}

// ResetChildPassword generates a new password for a child and returns it once
func (h *FamilyHandler) ResetChildPassword(w http.ResponseWriter, r *http.Request) {
	password, err := h.familyService.ResetChildPassword(callerFromContext(r.Context()), r.PathValue("familyId"), r.PathValue("childId"))
	if err != nil {
		respondWithServiceError(w, "Error resetting child password", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"password": password})
}

// CheckUsername reports whether a username is free
func (h *FamilyHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	result, err := h.familyService.CheckUsername(r.URL.Query().Get("username"))
	if err != nil {
		respondWithServiceError(w, "Error checking username", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetStudent returns a child's profile with projects and rewards
func (h *FamilyHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.familyService.GetStudent(callerFromContext(r.Context()), r.PathValue("studentId"))
	if err != nil {
		respondWithServiceError(w, "Error fetching student", err)
		return
	}
	respondJSON(w, http.StatusOK, student)
}
