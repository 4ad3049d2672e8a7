package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestMoonshotComplete(t *testing.T) {
	var got struct {
		Model       string    `json:"model"`
		Temperature float32   `json:"temperature"`
		Messages    []Message `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Lava is molten rock."},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	c := NewMoonshotClient("key", server.URL+"/v1", "moonshot-v1-8k")
	out, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: SystemPrompt("guru")},
		{Role: RoleUser, Content: "What is lava?"},
	}, ChatTemperature)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "Lava is molten rock." {
		t.Errorf("Complete() = %q", out)
	}
	if got.Model != "moonshot-v1-8k" || got.Temperature != ChatTemperature || len(got.Messages) != 2 {
		t.Errorf("request = %+v", got)
	}
}

func TestMoonshotNotConfigured(t *testing.T) {
	c := NewMoonshotClient("", "", "m")
	if _, err := c.Complete(context.Background(), nil, 0.3); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestReplicatePollsUntilSucceeded(t *testing.T) {
	var polls int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("Authorization = %q", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/models/prunaai/p-image/predictions":
			if r.Header.Get("Prefer") != "wait" {
				t.Errorf("missing Prefer: wait")
			}
			var body struct {
				Input map[string]interface{} `json:"input"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.Input["aspect_ratio"] != "4:3" || body.Input["prompt"] != "a volcano" {
				t.Errorf("input = %v", body.Input)
			}
			fmt.Fprintf(w, `{"id":"p1","status":"processing","urls":{"get":"%s/v1/predictions/p1"}}`, server.URL)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/predictions/p1":
			if atomic.AddInt32(&polls, 1) < 2 {
				fmt.Fprintf(w, `{"id":"p1","status":"processing","urls":{"get":"%s/v1/predictions/p1"}}`, server.URL)
				return
			}
			fmt.Fprint(w, `{"id":"p1","status":"succeeded","output":["https://replicate.delivery/out.png"]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewReplicateClient("tok", server.URL)
	c.pollInterval = time.Millisecond

	url, err := c.GenerateImage(context.Background(), "a volcano")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if url != "https://replicate.delivery/out.png" {
		t.Errorf("url = %q", url)
	}
	if n := atomic.LoadInt32(&polls); n != 2 {
		t.Errorf("polls = %d, want 2", n)
	}
}

func TestReplicatePollingTimesOut(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"p1","status":"processing","urls":{"get":"%s/v1/predictions/p1"}}`, server.URL)
	}))
	defer server.Close()

	c := NewReplicateClient("tok", server.URL)
	c.pollInterval = 5 * time.Millisecond
	c.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.GenerateImage(context.Background(), "a volcano")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("polling ran for %s", elapsed)
	}
}

func TestReplicateFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p1","status":"failed","error":"nsfw"}`)
	}))
	defer server.Close()

	c := NewReplicateClient("tok", server.URL)
	_, err := c.GenerateImage(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "failed") {
		t.Errorf("err = %v, want failed prediction", err)
	}
}

func TestFirstOutput(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{`"https://a/1.png"`, "https://a/1.png", false},
		{`["https://a/1.png","https://a/2.png"]`, "https://a/1.png", false},
		{`[]`, "", true},
		{`null`, "", true},
	}
	for _, tt := range tests {
		got, err := firstOutput(json.RawMessage(tt.raw))
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("firstOutput(%s) = %q, %v", tt.raw, got, err)
		}
	}
}

func TestSystemPromptFallback(t *testing.T) {
	personas := map[string]string{
		"guru":   "Tech Guru",
		"friend": "Funny Friend",
		"parent": "Angry Parent",
	}
	for id, tone := range personas {
		p := SystemPrompt(id)
		if !KnownPersona(id) || !strings.Contains(p, tone) || !strings.Contains(p, "FORMATTING RULES") {
			t.Errorf("persona %s prompt = %q", id, p)
		}
	}
	if !strings.Contains(BaseInstruction, "`code blocks`") {
		t.Error("formatting rules should ask for code blocks")
	}
	if SystemPrompt("pirate") != "You are a helpful assistant."+BaseInstruction {
		t.Error("unknown persona should fall back to the default prompt")
	}
}

func TestSummaryMessagesListSources(t *testing.T) {
	msgs := SummaryMessages("Volcanoes", "why they erupt", []Source{
		{ID: "l1", Kind: "WEB", Title: "USGS", URL: "https://usgs.gov"},
		{ID: "l2", Kind: "VIDEO", Title: "Clip", URL: "https://youtube.com/watch?v=1", Summary: "eruption footage"},
	})
	user := msgs[len(msgs)-1].Content
	for _, want := range []string{"[source:l1] WEB USGS https://usgs.gov", "[source:l2] VIDEO Clip https://youtube.com/watch?v=1 eruption footage"} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q:\n%s", want, user)
		}
	}
}
