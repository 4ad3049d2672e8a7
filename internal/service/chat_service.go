package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"researchnest/internal/ai"
	"researchnest/internal/models"
	"researchnest/internal/repository"
)

var (
	ErrMessageRequired = errors.New("message is required")
	ErrChatNotFound    = errors.New("chat not found")
	ErrChatFailed      = errors.New("failed to process chat")
)

// maxTitleRunes is the length of a message used verbatim as a session title
const maxTitleRunes = 40

// Persona selects the assistant's system prompt
type Persona struct {
	ID string `json:"id"`
}

// ChatInput is one chat turn from the client
type ChatInput struct {
	Message   string       `json:"message"`
	Messages  []ai.Message `json:"messages"`
	Persona   Persona      `json:"persona"`
	ProjectID string       `json:"projectId"`
	ChatID    string       `json:"chatId"`
}

// ChatReply is the assistant's answer and the session it was stored in
type ChatReply struct {
	Content string `json:"content"`
	ChatID  string `json:"chatId"`
}

// ChatService runs persona chats and persists their transcripts
type ChatService struct {
	chatRepo  *repository.ChatRepository
	projects  *ProjectService
	completer ai.Completer
}

// NewChatService creates a new chat service
func NewChatService(chatRepo *repository.ChatRepository, projects *ProjectService, completer ai.Completer) *ChatService {
	return &ChatService{chatRepo: chatRepo, projects: projects, completer: completer}
}

// Send stores the user's message, asks the completion endpoint and stores
// the reply. A new session is created when no chatId is given.
func (s *ChatService) Send(ctx context.Context, caller Caller, in ChatInput) (*ChatReply, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrMessageRequired
	}

	session, err := s.resolveSession(caller, in)
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.AddMessage(&models.ChatMessage{
		SessionID: session.ID,
		Role:      models.ChatRoleUser,
		Content:   in.Message,
	}); err != nil {
		return nil, err
	}

	if in.Persona.ID != "" && !ai.KnownPersona(in.Persona.ID) {
		log.Printf("Unknown chat persona %q, using the default prompt", in.Persona.ID)
	}
	messages := append([]ai.Message{{Role: ai.RoleSystem, Content: ai.SystemPrompt(in.Persona.ID)}}, conversation(in)...)

	content, err := s.completer.Complete(ctx, messages, ai.ChatTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatFailed, err)
	}

	if content != "" {
		if err := s.chatRepo.AddMessage(&models.ChatMessage{
			SessionID: session.ID,
			Role:      models.ChatRoleAssistant,
			Content:   content,
		}); err != nil {
			log.Printf("Warning: failed to store assistant reply in chat %s: %v", session.ID, err)
		}
	}

	return &ChatReply{Content: content, ChatID: session.ID}, nil
}

func (s *ChatService) resolveSession(caller Caller, in ChatInput) (*models.ChatSession, error) {
	if in.ChatID != "" {
		session, err := s.chatRepo.GetSessionByID(in.ChatID)
		if err != nil {
			return nil, err
		}
		if session == nil || session.UserID != caller.UserID {
			return nil, ErrChatNotFound
		}
		return session, nil
	}

	if in.ProjectID != "" {
		if _, err := s.projects.Visible(caller, in.ProjectID); err != nil {
			return nil, err
		}
	}

	persona := in.Persona.ID
	if persona == "" {
		persona = "default"
	}
	session := &models.ChatSession{
		UserID:    caller.UserID,
		ProjectID: in.ProjectID,
		Persona:   persona,
		Title:     chatTitle(in.Message),
	}
	if err := s.chatRepo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// conversation returns the client's running history, which normally ends
// with the new user turn. Only user and assistant turns are replayed, and
// the new message is appended when the history does not already carry it.
func conversation(in ChatInput) []ai.Message {
	history := make([]ai.Message, 0, len(in.Messages)+1)
	for _, m := range in.Messages {
		if m.Role == ai.RoleUser || m.Role == ai.RoleAssistant {
			history = append(history, m)
		}
	}
	if n := len(history); n > 0 && history[n-1].Role == ai.RoleUser &&
		strings.TrimSpace(history[n-1].Content) == strings.TrimSpace(in.Message) {
		return history
	}
	return append(history, ai.Message{Role: ai.RoleUser, Content: in.Message})
}

func chatTitle(message string) string {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) <= maxTitleRunes {
		return message
	}
	return string([]rune(message)[:maxTitleRunes]) + "..."
}

// Get returns one of the caller's sessions with its messages
func (s *ChatService) Get(caller Caller, chatID string) (*models.ChatSession, error) {
	session, err := s.chatRepo.GetSessionByID(chatID)
	if err != nil {
		return nil, err
	}
	if session == nil || (session.UserID != caller.UserID && !caller.IsAdmin()) {
		return nil, ErrChatNotFound
	}
	if session.Messages, err = s.chatRepo.ListMessages(session.ID); err != nil {
		return nil, err
	}
	return session, nil
}

// List returns the caller's sessions, optionally limited to one project
func (s *ChatService) List(caller Caller, projectID string) ([]models.ChatSession, error) {
	sessions, err := s.chatRepo.ListSessionsByUser(caller.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatSession, 0, len(sessions))
	for _, cs := range sessions {
		if projectID == "" || cs.ProjectID == projectID {
			out = append(out, cs)
		}
	}
	return out, nil
}
