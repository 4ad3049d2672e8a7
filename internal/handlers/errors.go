package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"researchnest/internal/service"
	"researchnest/internal/validation"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorBody{Error: userMsg})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// decodeJSON reads a single JSON object from the request body
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// serviceErrors maps service sentinels to their HTTP status and message
var serviceErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrMissingFields, http.StatusBadRequest, "Missing required fields"},
	{service.ErrEmailTaken, http.StatusBadRequest, "User already exists"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrResetTokenInvalid, http.StatusBadRequest, "Invalid or expired reset token"},
	{service.ErrResetTokenUsed, http.StatusBadRequest, "This reset link has already been used"},
	{service.ErrResetTokenExpired, http.StatusBadRequest, "This reset link has expired"},

	{service.ErrNotInFamily, http.StatusForbidden, ErrNotPartOfFamily},
	{service.ErrForbidden, http.StatusForbidden, ErrForbidden},
	{service.ErrFamilyNotFound, http.StatusNotFound, "Family not found"},
	{service.ErrProjectNotFound, http.StatusNotFound, "Project not found"},
	{service.ErrProjectNotInFamily, http.StatusForbidden, "Project does not belong to this family"},
	{service.ErrProjectAccess, http.StatusForbidden, "You do not have access to this project"},

	{service.ErrChildFieldsRequired, http.StatusBadRequest, "Name, username, and password are required"},
	{service.ErrUsernameTaken, http.StatusBadRequest, "Username already exists"},
	{service.ErrEmailExists, http.StatusBadRequest, "Email already exists"},
	{service.ErrUsernameRequired, http.StatusBadRequest, "Username is required"},
	{service.ErrStudentNotFound, http.StatusNotFound, "Student not found"},
	{service.ErrChildNotFound, http.StatusNotFound, "Child not found"},

	{service.ErrProjectFieldsRequired, http.StatusBadRequest, "Project name and owner ID are required"},
	{service.ErrInvalidOwner, http.StatusBadRequest, "Invalid owner ID or owner does not belong to this family"},
	{service.ErrResearchNotFound, http.StatusNotFound, "Research not found"},
	{service.ErrLinkNotFound, http.StatusNotFound, "Link not found"},
	{service.ErrSummaryFailed, http.StatusInternalServerError, "Failed to generate summary"},
	{service.ErrNoteNotFound, http.StatusNotFound, "Note not found"},

	{service.ErrMessageRequired, http.StatusBadRequest, "Message is required"},
	{service.ErrChatNotFound, http.StatusNotFound, "Chat not found"},
	{service.ErrChatFailed, http.StatusInternalServerError, "Failed to process chat"},

	{service.ErrProjectNameRequired, http.StatusBadRequest, "Project name is required"},
	{service.ErrDescriptionFailed, http.StatusInternalServerError, "Failed to generate description"},
	{service.ErrImageFailed, http.StatusInternalServerError, "Failed to generate image"},

	{service.ErrMediaNotFound, http.StatusNotFound, "File not found"},
}

// respondWithServiceError translates a service error into the JSON error
// shape. Only unexpected and upstream failures are logged.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		respondWithError(w, http.StatusBadRequest, vErr.Message, "", nil)
		return
	}

	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			var logged error
			if se.status >= http.StatusInternalServerError {
				logged = err
			}
			respondWithError(w, se.status, se.message, logMsg, logged)
			return
		}
	}

	respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
}
