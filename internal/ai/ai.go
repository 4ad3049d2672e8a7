// Package ai talks to the hosted chat-completion and image-generation APIs.
package ai

import (
	"context"
	"errors"
)

// Roles understood by the completion endpoint
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotConfigured is returned when the client has no credentials
var ErrNotConfigured = errors.New("ai client not configured")

// ErrEmptyResponse is returned when the provider answers without content
var ErrEmptyResponse = errors.New("empty response from provider")

// Message is one turn sent to the completion endpoint
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces a single chat completion
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float32) (string, error)
}

// ImageGenerator turns a prompt into a hosted image URL
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
