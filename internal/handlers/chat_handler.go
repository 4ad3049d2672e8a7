package handlers

import (
	"errors"
	"net/http"

	"researchnest/internal/service"
)

// ChatHandler serves the persona chat assistant
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send runs one chat turn
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var in service.ChatInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	reply, err := h.chatService.Send(r.Context(), callerFromContext(r.Context()), in)
	if err == nil || errors.Is(err, service.ErrChatFailed) {
		observeAI("chat", err)
	}
	if err != nil {
		respondWithServiceError(w, "Chat error", err)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

// Get returns one of the caller's chat sessions with its messages
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatService.Get(callerFromContext(r.Context()), r.PathValue("chatId"))
	if err != nil {
		respondWithServiceError(w, "Error fetching chat", err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// List returns the caller's chat sessions, optionally for one project
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.List(callerFromContext(r.Context()), r.URL.Query().Get("projectId"))
	if err != nil {
		respondWithServiceError(w, "Error listing chats", err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}
