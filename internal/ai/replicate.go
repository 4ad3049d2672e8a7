package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ImageModel is the Replicate model used for project covers
const ImageModel = "prunaai/p-image"

// ReplicateClient runs predictions against the Replicate HTTP API
type ReplicateClient struct {
	baseURL      string
	model        string
	httpClient   *http.Client
	pollInterval time.Duration
	timeout      time.Duration
	enabled      bool
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// NewReplicateClient creates a client authenticating with a static bearer token
func NewReplicateClient(apiToken, baseURL string) *ReplicateClient {
	base := &http.Client{Timeout: DefaultTimeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiToken}))
	httpClient.Timeout = DefaultTimeout

	return &ReplicateClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        ImageModel,
		httpClient:   httpClient,
		pollInterval: time.Second,
		timeout:      DefaultTimeout,
		enabled:      apiToken != "",
	}
}

// GenerateImage runs the image model with a 4:3 aspect ratio and returns
// the first output URL. Creating and polling the prediction together are
// bounded by DefaultTimeout.
func (c *ReplicateClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]interface{}{
		"input": map[string]interface{}{
			"prompt":            prompt,
			"aspect_ratio":      "4:3",
			"prompt_upsampling": false,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, c.model), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	p, err := c.do(req)
	if err != nil {
		return "", err
	}

	for p.Status == "starting" || p.Status == "processing" {
		if p.URLs.Get == "" {
			return "", fmt.Errorf("prediction %s pending without poll url", p.ID)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("prediction %s not finished: %w", p.ID, ctx.Err())
		case <-time.After(c.pollInterval):
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URLs.Get, nil)
		if err != nil {
			return "", err
		}
		if p, err = c.do(req); err != nil {
			return "", err
		}
	}

	if p.Status != "succeeded" {
		return "", fmt.Errorf("prediction %s %s: %v", p.ID, p.Status, p.Error)
	}
	return firstOutput(p.Output)
}

func (c *ReplicateClient) do(req *http.Request) (*prediction, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("replicate returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var p prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	return &p, nil
}

// firstOutput accepts either a single URL or a list of URLs
func firstOutput(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}
	return "", ErrEmptyResponse
}
