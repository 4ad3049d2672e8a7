// Package client is the Go data layer for the researchnest API. It wraps the
// JSON endpoints used by the parent and student dashboards.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"researchnest/internal/models"
)

// DefaultTimeout bounds every API call made with the default HTTP client
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a researchnest server with a bearer session token
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for baseURL. A nil httpClient gets DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// SetToken replaces the session token sent with each request
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current session token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// RegisterRequest is the parent sign-up form
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterResult is the new parent, their family and a session
type RegisterResult struct {
	Message   string      `json:"message"`
	FamilyID  string      `json:"familyId"`
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	CSRFToken string      `json:"csrfToken"`
}

// Register creates a parent account and keeps its session token
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*RegisterResult, error) {
	var out RegisterResult
	if err := c.do(ctx, http.MethodPost, "/api/register", in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Session is a signed-in user
type Session struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	CSRFToken string      `json:"csrfToken"`
}

// Login signs in by email or username and keeps the session token
func (c *Client) Login(ctx context.Context, identifier, password string) (*Session, error) {
	var out Session
	in := map[string]string{"identifier": identifier, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// ChildRequest is the add-child form
type ChildRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Color    string `json:"color,omitempty"`
}

// CreateChild adds a child account to familyID
func (c *Client) CreateChild(ctx context.Context, familyID string, in ChildRequest) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/api/family/"+url.PathEscape(familyID)+"/children", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProjectRequest is the new-project form
type ProjectRequest struct {
	Name        string     `json:"name"`
	OwnerID     string     `json:"ownerId"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Grade       string     `json:"grade,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty"`
}

// CreateProject creates a project owned by a family member
func (c *Client) CreateProject(ctx context.Context, familyID string, in ProjectRequest) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodPost, "/api/family/"+url.PathEscape(familyID)+"/projects", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProjectDetails loads a project with research, notes and chats
func (c *Client) ProjectDetails(ctx context.Context, familyID, projectID string) (*models.Project, error) {
	var out models.Project
	path := "/api/family/" + url.PathEscape(familyID) + "/projects/" + url.PathEscape(projectID) + "/project-details"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Family loads the parent dashboard aggregate
func (c *Client) Family(ctx context.Context, familyID string) (*FamilyView, error) {
	var out FamilyView
	if err := c.do(ctx, http.MethodGet, "/api/family/"+url.PathEscape(familyID), nil, &out.Family); err != nil {
		return nil, err
	}
	return &out, nil
}

// Student loads a child's profile
func (c *Client) Student(ctx context.Context, studentID string) (*StudentView, error) {
	var out StudentView
	if err := c.do(ctx, http.MethodGet, "/api/student/"+url.PathEscape(studentID), nil, &out.StudentProfile); err != nil {
		return nil, err
	}
	return &out, nil
}

// UsernameAvailability answers a username check
type UsernameAvailability struct {
	Available   bool     `json:"available"`
	Username    string   `json:"username"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CheckUsername asks whether username is free
func (c *Client) CheckUsername(ctx context.Context, username string) (*UsernameAvailability, error) {
	var out UsernameAvailability
	if err := c.do(ctx, http.MethodGet, "/api/check-username?username="+url.QueryEscape(username), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatMessage is one turn of client-held history
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one chat turn
type ChatRequest struct {
	Message   string        `json:"message"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	PersonaID string        `json:"-"`
	ProjectID string        `json:"projectId,omitempty"`
	ChatID    string        `json:"chatId,omitempty"`
}

// ChatReply is the assistant's answer
type ChatReply struct {
	Content string `json:"content"`
	ChatID  string `json:"chatId"`
}

// Chat sends one message to the assistant. Messages is the conversation so
// far; the new message is added as its final user turn when missing.
func (c *Client) Chat(ctx context.Context, in ChatRequest) (*ChatReply, error) {
	if n := len(in.Messages); n == 0 || in.Messages[n-1].Role != "user" || in.Messages[n-1].Content != in.Message {
		history := make([]ChatMessage, 0, n+1)
		history = append(history, in.Messages...)
		in.Messages = append(history, ChatMessage{Role: "user", Content: in.Message})
	}

	body := struct {
		ChatRequest
		Persona struct {
			ID string `json:"id"`
		} `json:"persona"`
	}{ChatRequest: in}
	body.Persona.ID = in.PersonaID

	var out ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
