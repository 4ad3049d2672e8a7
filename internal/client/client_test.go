package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"researchnest/internal/ai"
	"researchnest/internal/handlers"
	"researchnest/internal/repository"
	"researchnest/internal/security"
	"researchnest/internal/service"
	"researchnest/internal/testutil"
)

type echoCompleter struct{}

func (echoCompleter) Complete(ctx context.Context, messages []ai.Message, temperature float32) (string, error) {
	return "echo: " + messages[len(messages)-1].Content, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	researchRepo := repository.NewResearchRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	chatRepo := repository.NewChatRepository(db)

	authService := service.NewAuthService(userRepo, security.NewTokenManager("secret", time.Hour), nil)
	familyService := service.NewFamilyService(userRepo, familyRepo, projectRepo, repository.NewRewardsRepository(db), researchRepo, noteRepo, db)
	projectService := service.NewProjectService(projectRepo, userRepo, familyRepo, researchRepo, noteRepo, chatRepo, nil, 1<<20)

	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	m := handlers.NewMiddleware(authService, security.NewCSRFGenerator("csrf"), security.NewRateLimiter(100, time.Minute, stop))

	router := handlers.NewRouter(m, handlers.Handlers{
		Auth:     handlers.NewAuthHandler(authService, m),
		Family:   handlers.NewFamilyHandler(familyService),
		Project:  handlers.NewProjectHandler(projectService, service.NewResearchService(researchRepo, projectService, echoCompleter{}), service.NewNoteService(noteRepo, projectService)),
		Chat:     handlers.NewChatHandler(service.NewChatService(chatRepo, projectService, echoCompleter{})),
		Generate: handlers.NewGenerateHandler(service.NewGenerateService(echoCompleter{}, nil)),
		Media:    handlers.NewMediaHandler(service.NewMediaService(nil)),
		Page:     handlers.NewPageHandler(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEndRegisterChildProject(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	parent := New(srv.URL, srv.Client())

	reg, err := parent.Register(ctx, RegisterRequest{FirstName: "Jane", LastName: "Smith", Email: "jane@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if parent.Token() == "" {
		t.Fatal("session token not kept")
	}

	child, err := parent.CreateChild(ctx, reg.FamilyID, ChildRequest{Name: "Billy", Username: "billy", Password: "kidpass"})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	project, err := parent.CreateProject(ctx, reg.FamilyID, ProjectRequest{Name: "Volcanoes", OwnerID: child.ID, CoverImage: "🌋"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	family, err := parent.Family(ctx, reg.FamilyID)
	if err != nil {
		t.Fatalf("Family() error = %v", err)
	}
	member, ok := family.Member(child.ID)
	if !ok {
		t.Fatal("child missing from family")
	}
	if member.ActiveProjects != 1 {
		t.Errorf("activeProjects = %d, want 1", member.ActiveProjects)
	}
	if len(family.Children()) != 1 || len(family.ProjectsFor(child.ID)) != 1 {
		t.Errorf("children = %d, projects = %d", len(family.Children()), len(family.ProjectsFor(child.ID)))
	}

	kid := New(srv.URL, srv.Client())
	if _, err := kid.Login(ctx, "billy", "kidpass"); err != nil {
		t.Fatalf("child Login() error = %v", err)
	}
	student, err := kid.Student(ctx, child.ID)
	if err != nil {
		t.Fatalf("Student() error = %v", err)
	}
	if len(student.ActiveProjects()) != 1 || student.Rewards == nil {
		t.Errorf("student = %+v", student)
	}

	reply, err := kid.Chat(ctx, ChatRequest{Message: "hi", PersonaID: "friend", ProjectID: project.ID})
	if err != nil || reply.Content != "echo: hi" || reply.ChatID == "" {
		t.Errorf("Chat() = %+v, %v", reply, err)
	}

	details, err := kid.ProjectDetails(ctx, reg.FamilyID, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(details.Chats) != 1 {
		t.Errorf("chats = %d", len(details.Chats))
	}
}

func TestAPIErrors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := New(srv.URL, srv.Client())

	_, err := c.Family(ctx, "anything")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Unauthorized" {
		t.Errorf("err = %v", err)
	}

	_, err = c.Login(ctx, "nobody", "secret1")
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid credentials" {
		t.Errorf("login err = %v", err)
	}
}

func TestCheckUsernameThroughChecker(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := New(srv.URL, srv.Client())
	reg, err := c.Register(ctx, RegisterRequest{FirstName: "Jane", LastName: "Smith", Email: "jane@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.CreateChild(ctx, reg.FamilyID, ChildRequest{Name: "Billy", Username: "billy", Password: "kidpass"}); err != nil {
		t.Fatal(err)
	}

	results := make(chan UsernameResult, 1)
	checker := c.UsernameChecker(func(r UsernameResult) { results <- r })
	checker.delay = 10 * time.Millisecond
	defer checker.Stop()
	checker.Input("billy")

	select {
	case r := <-results:
		if r.Err != nil || r.Availability.Available {
			t.Errorf("result = %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
}

func TestChatSendsHistoryEndingWithMessage(t *testing.T) {
	var got struct {
		Message  string        `json:"message"`
		Messages []ChatMessage `json:"messages"`
		Persona  struct {
			ID string `json:"id"`
		} `json:"persona"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":"ok","chatId":"c1"}`))
	}))
	defer srv.Close()
	c := New(srv.URL, srv.Client())

	tests := []struct {
		name    string
		history []ChatMessage
		want    int
	}{
		{"empty history", nil, 1},
		{"prior turns", []ChatMessage{{Role: "user", Content: "Hi"}, {Role: "assistant", Content: "Hello!"}}, 3},
		{"already ends with message", []ChatMessage{{Role: "user", Content: "What is lava?"}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Chat(context.Background(), ChatRequest{Message: "What is lava?", Messages: tt.history, PersonaID: "guru"}); err != nil {
				t.Fatal(err)
			}
			if len(got.Messages) != tt.want {
				t.Fatalf("messages = %+v, want %d", got.Messages, tt.want)
			}
			last := got.Messages[len(got.Messages)-1]
			if last.Role != "user" || last.Content != "What is lava?" || got.Persona.ID != "guru" {
				t.Errorf("body = %+v", got)
			}
		})
	}
}
