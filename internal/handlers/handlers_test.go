package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"researchnest/internal/ai"
	"researchnest/internal/repository"
	"researchnest/internal/security"
	"researchnest/internal/service"
	"researchnest/internal/testutil"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(ctx context.Context, messages []ai.Message, temperature float32) (string, error) {
	return s.reply, s.err
}

type stubImages struct{}

func (stubImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return "https://replicate.delivery/" + strings.ReplaceAll(prompt, " ", "-") + ".png", nil
}

// stubStore presigns onto a local file server
type stubStore struct {
	baseURL string
}

func (s *stubStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}

func (s *stubStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	return s.baseURL + "/" + key, nil
}

type testServer struct {
	*httptest.Server
	completer *stubCompleter
	store     *stubStore
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	researchRepo := repository.NewResearchRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	chatRepo := repository.NewChatRepository(db)

	completer := &stubCompleter{reply: "Hello there"}
	store := &stubStore{}

	authService := service.NewAuthService(userRepo, security.NewTokenManager("test-secret", time.Hour), nil)
	familyService := service.NewFamilyService(userRepo, familyRepo, projectRepo, repository.NewRewardsRepository(db), researchRepo, noteRepo, db)
	projectService := service.NewProjectService(projectRepo, userRepo, familyRepo, researchRepo, noteRepo, chatRepo, store, 1<<20)

	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	m := NewMiddleware(authService, security.NewCSRFGenerator("csrf-secret"), security.NewRateLimiter(rateLimit, time.Minute, stop))

	router := NewRouter(m, Handlers{
		Auth:     NewAuthHandler(authService, m),
		Family:   NewFamilyHandler(familyService),
		Project:  NewProjectHandler(projectService, service.NewResearchService(researchRepo, projectService, completer), service.NewNoteService(noteRepo, projectService)),
		Chat:     NewChatHandler(service.NewChatService(chatRepo, projectService, completer)),
		Generate: NewGenerateHandler(service.NewGenerateService(completer, stubImages{})),
		Media:    NewMediaHandler(service.NewMediaService(store)),
		Page:     NewPageHandler(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, completer: completer, store: store}
}

// noRedirect returns a client that surfaces redirects instead of following them
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := noRedirect().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode %s response: %v", resp.Request.URL.Path, err)
	}
}

func expectError(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("%s %s status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, status)
	}
	var body errorBody
	decodeBody(t, resp, &body)
	if body.Error != message {
		t.Errorf("error = %q, want %q", body.Error, message)
	}
}

type registered struct {
	FamilyID  string `json:"familyId"`
	Token     string `json:"token"`
	CSRFToken string `json:"csrfToken"`
	User      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Type     string `json:"type"`
	} `json:"user"`
}

func (ts *testServer) register(t *testing.T, last, email string) registered {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"firstName": "Pat", "lastName": last, "email": email, "password": "secret1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var out registered
	decodeBody(t, resp, &out)
	return out
}

func (ts *testServer) login(t *testing.T, identifier, password string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/login", "", map[string]string{"identifier": identifier, "password": password})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s status = %d", identifier, resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &out)
	return out.Token
}

func (ts *testServer) createChild(t *testing.T, token, familyID, username string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/family/"+familyID+"/children", token, map[string]string{
		"name": "Kid " + username, "username": username, "password": "kidpass",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create child status = %d", resp.StatusCode)
	}
	var out struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &out)
	return out.ID
}

func (ts *testServer) createProject(t *testing.T, token, familyID, ownerID, cover string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/family/"+familyID+"/projects", token, map[string]string{
		"name": "Volcanoes", "ownerId": ownerID, "coverImage": cover,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project status = %d", resp.StatusCode)
	}
	var out struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &out)
	return out.ID
}
