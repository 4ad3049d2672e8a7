package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"researchnest/internal/service"
)

const mediaCacheControl = "public, max-age=31536000, immutable"

// MediaHandler proxies stored family media
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// Serve streams familyId/key from object storage
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	familyID := r.PathValue("familyId")
	obj, err := h.mediaService.Fetch(r.Context(), callerFromContext(r.Context()), familyID, r.PathValue("key"))
	if err != nil {
		if errors.Is(err, service.ErrNotInFamily) {
			respondWithServiceError(w, "", err)
			return
		}
		respondWithError(w, http.StatusNotFound, "File not found", "Error fetching media", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", mediaCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		log.Printf("Error streaming media %s/%s: %v", familyID, r.PathValue("key"), err)
	}
}
