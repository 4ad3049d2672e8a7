package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout bounds every outbound AI call
const DefaultTimeout = 60 * time.Second

// MoonshotClient calls Moonshot's OpenAI-compatible chat API
type MoonshotClient struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewMoonshotClient creates a client for baseURL. An empty apiKey yields a
// client whose calls fail with ErrNotConfigured.
func NewMoonshotClient(apiKey, baseURL, model string) *MoonshotClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}

	return &MoonshotClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		enabled: apiKey != "",
	}
}

// Complete sends messages and returns the first choice's content
func (c *MoonshotClient) Complete(ctx context.Context, messages []Message, temperature float32) (string, error) {
	if !c.enabled {
		return "", ErrNotConfigured
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
