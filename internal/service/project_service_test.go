package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"researchnest/internal/models"
	"researchnest/internal/validation"
)

func TestCreateProjectRejectsForeignOwner(t *testing.T) {
	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	other, _ := e.registerParent(t, "Tom", "Jones", "tom@example.com")
	outsider := e.addChild(t, other, "outsider")

	_, err := e.projects.Create(context.Background(), callerOf(parent), family.ID, CreateProjectInput{Name: "Volcanoes", OwnerID: outsider.ID})
	if !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("err = %v, want ErrInvalidOwner", err)
	}
	_, err = e.projects.Create(context.Background(), callerOf(parent), family.ID, CreateProjectInput{Name: "Volcanoes", OwnerID: "ghost"})
	if !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("unknown owner err = %v", err)
	}

	count, err := e.projRepo.CountProjects(family.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("projects = %d, want 0", count)
	}
}

func TestCreateProjectDefaults(t *testing.T) {
	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	billy := e.addChild(t, parent, "billy")

	p, err := e.projects.Create(context.Background(), callerOf(parent), family.ID, CreateProjectInput{Name: " Volcanoes ", OwnerID: billy.ID, CoverImage: "🌋"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Volcanoes" || p.Status != models.ProjectStatusDraft || p.Progress != 0 {
		t.Errorf("project = %+v", p)
	}
	if p.CoverImage != "🌋" {
		t.Errorf("emoji cover changed to %q", p.CoverImage)
	}
	if p.Owner == nil || p.Owner.ID != billy.ID {
		t.Errorf("owner = %+v", p.Owner)
	}

	if _, err := e.projects.Create(context.Background(), callerOf(billy), family.ID, CreateProjectInput{Name: "Mine", OwnerID: billy.ID}); !errors.Is(err, ErrForbidden) {
		t.Errorf("child create err = %v", err)
	}
	if _, err := e.projects.Create(context.Background(), callerOf(parent), family.ID, CreateProjectInput{OwnerID: billy.ID}); !errors.Is(err, ErrProjectFieldsRequired) {
		t.Errorf("missing name err = %v", err)
	}
}

func TestCreateProjectDueDate(t *testing.T) {
	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	billy := e.addChild(t, parent, "billy")

	tests := []struct {
		name    string
		dueDate string
		want    string
		wantErr bool
	}{
		{name: "empty", dueDate: `""`},
		{name: "null", dueDate: `null`},
		{name: "date only", dueDate: `"2026-05-01"`, want: "2026-05-01"},
		{name: "timestamp", dueDate: `"2026-05-01T09:00:00Z"`, want: "2026-05-01"},
		{name: "garbage", dueDate: `"next week"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"name":"Volcanoes","ownerId":"` + billy.ID + `","dueDate":` + tt.dueDate + `}`
			var in CreateProjectInput
			if err := json.Unmarshal([]byte(body), &in); err != nil {
				t.Fatalf("decode: %v", err)
			}

			p, err := e.projects.Create(context.Background(), callerOf(parent), family.ID, in)
			if tt.wantErr {
				var vErr *validation.Error
				if !errors.As(err, &vErr) || vErr.Field != "dueDate" {
					t.Fatalf("err = %v, want dueDate validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == "" {
				if p.DueDate != nil {
					t.Errorf("DueDate = %v, want nil", p.DueDate)
				}
				return
			}
			if p.DueDate == nil || p.DueDate.Format("2006-01-02") != tt.want {
				t.Errorf("DueDate = %v, want %s", p.DueDate, tt.want)
			}
		})
	}
}

func TestCreateProjectPromotesCover(t *testing.T) {
	image := []byte("\xff\xd8\xff\xe0fake-jpeg")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(image)
	}))
	defer srv.Close()

	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	billy := e.addChild(t, parent, "billy")

	p, err := e.projects.Create(context.Background(), callerOf(parent), family.ID, CreateProjectInput{Name: "Volcanoes", OwnerID: billy.ID, CoverImage: srv.URL + "/tmp.jpg"})
	if err != nil {
		t.Fatal(err)
	}

	prefix := family.ID + "/projects/" + p.ID + "/images/"
	if !strings.HasPrefix(p.CoverImage, prefix) || !strings.HasSuffix(p.CoverImage, ".jpg") {
		t.Fatalf("cover = %q, want key under %s", p.CoverImage, prefix)
	}
	if string(e.store.objects[p.CoverImage]) != string(image) {
		t.Error("stored object does not match downloaded image")
	}
	if e.store.contentTypes[p.CoverImage] != "image/jpeg" {
		t.Errorf("content type = %q", e.store.contentTypes[p.CoverImage])
	}

	stored, err := e.projRepo.GetProjectByID(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.CoverImage != p.CoverImage {
		t.Errorf("stored cover = %q, want %q", stored.CoverImage, p.CoverImage)
	}
}

func TestCreateProjectKeepsUnreachableCover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	billy := e.addChild(t, parent, "billy")

	cover := srv.URL + "/gone.png"
	p, err := e.projects.Create(context.Background(), callerOf(parent), family.ID, CreateProjectInput{Name: "Volcanoes", OwnerID: billy.ID, CoverImage: cover})
	if err != nil {
		t.Fatalf("cover failure must not fail creation: %v", err)
	}
	if p.CoverImage != cover {
		t.Errorf("cover = %q, want original URL", p.CoverImage)
	}
	if len(e.store.objects) != 0 {
		t.Errorf("stored %d objects", len(e.store.objects))
	}
}

func TestAuthorizeOrder(t *testing.T) {
	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	billy := e.addChild(t, parent, "billy")
	sally := e.addChild(t, parent, "sally")
	project := e.addProject(t, parent, billy, "Volcanoes")

	other, otherFamily := e.registerParent(t, "Tom", "Jones", "tom@example.com")
	otherKid := e.addChild(t, other, "outsider")
	foreign := e.addProject(t, other, otherKid, "Bees")

	tests := []struct {
		name      string
		caller    Caller
		familyID  string
		projectID string
		wantErr   error
	}{
		{"owner", callerOf(billy), family.ID, project.ID, nil},
		{"parent", callerOf(parent), family.ID, project.ID, nil},
		{"admin", Caller{UserID: "a", Type: models.UserTypeAdmin}, family.ID, project.ID, nil},
		{"family mismatch", callerOf(parent), otherFamily.ID, foreign.ID, ErrNotInFamily},
		{"missing project", callerOf(parent), family.ID, "missing", ErrProjectNotFound},
		{"project in other family", callerOf(parent), family.ID, foreign.ID, ErrProjectNotInFamily},
		{"sibling", callerOf(sally), family.ID, project.ID, ErrProjectAccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.projects.Authorize(tt.caller, tt.familyID, tt.projectID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateProject(t *testing.T) {
	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	billy := e.addChild(t, parent, "billy")
	project := e.addProject(t, parent, billy, "Volcanoes")

	status := models.ProjectStatusInProgress
	progress := 40
	got, err := e.projects.Update(callerOf(billy), family.ID, project.ID, UpdateProjectInput{Status: &status, Progress: &progress})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != status || got.Progress != 40 {
		t.Errorf("project = %+v", got)
	}

	name := "Renamed"
	if _, err := e.projects.Update(callerOf(billy), family.ID, project.ID, UpdateProjectInput{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Errorf("child rename err = %v", err)
	}

	bad := 101
	var vErr *validation.Error
	if _, err := e.projects.Update(callerOf(parent), family.ID, project.ID, UpdateProjectInput{Progress: &bad}); !errors.As(err, &vErr) {
		t.Errorf("progress 101 err = %v", err)
	}
	unknown := models.ProjectStatus("ARCHIVED")
	if _, err := e.projects.Update(callerOf(parent), family.ID, project.ID, UpdateProjectInput{Status: &unknown}); !errors.As(err, &vErr) {
		t.Errorf("unknown status err = %v", err)
	}
}

func TestUpdateProjectClearsDueDate(t *testing.T) {
	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	billy := e.addChild(t, parent, "billy")
	project := e.addProject(t, parent, billy, "Volcanoes")

	due := "2026-05-01"
	got, err := e.projects.Update(callerOf(parent), family.ID, project.ID, UpdateProjectInput{DueDate: &due})
	if err != nil {
		t.Fatal(err)
	}
	if got.DueDate == nil {
		t.Fatal("DueDate not set")
	}

	empty := ""
	got, err = e.projects.Update(callerOf(parent), family.ID, project.ID, UpdateProjectInput{DueDate: &empty})
	if err != nil {
		t.Fatal(err)
	}
	if got.DueDate != nil {
		t.Errorf("DueDate = %v, want cleared", got.DueDate)
	}
}

func TestGetDetails(t *testing.T) {
	e := newTestEnv(t)
	parent, family := e.registerParent(t, "Jane", "Smith", "jane@example.com")
	billy := e.addChild(t, parent, "billy")
	project := e.addProject(t, parent, billy, "Volcanoes")
	caller := callerOf(billy)

	research, err := e.research.Create(caller, family.ID, project.ID, "Lava", "how hot")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.research.AddLink(caller, family.ID, project.ID, research.ID, LinkInput{URL: "https://example.com/lava"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.notes.Create(caller, family.ID, project.ID, NoteInput{Content: "lava is hot"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.chat.Send(context.Background(), caller, ChatInput{Message: "hello", ProjectID: project.ID}); err != nil {
		t.Fatal(err)
	}

	got, err := e.projects.GetDetails(caller, family.ID, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Owner == nil || got.Owner.Username != "billy" {
		t.Errorf("owner = %+v", got.Owner)
	}
	if len(got.Research) != 1 || len(got.Research[0].WebLinks) != 1 {
		t.Errorf("research = %+v", got.Research)
	}
	if len(got.Notes) != 1 {
		t.Errorf("notes = %d", len(got.Notes))
	}
	if len(got.Chats) != 1 || len(got.Chats[0].Messages) != 2 {
		t.Errorf("chats = %+v", got.Chats)
	}
}
