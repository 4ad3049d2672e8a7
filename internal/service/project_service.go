package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"researchnest/internal/models"
	"researchnest/internal/repository"
	"researchnest/internal/storage"
	"researchnest/internal/validation"
)

var (
	ErrProjectFieldsRequired = errors.New("project name and owner ID are required")
	ErrInvalidOwner          = errors.New("invalid owner ID or owner does not belong to this family")
)

// CoverFetchTimeout bounds the download of a temporary cover image
const CoverFetchTimeout = 30 * time.Second

// CreateProjectInput is the new-project form
type CreateProjectInput struct {
	Name        string     `json:"name"`
	OwnerID     string     `json:"ownerId"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Grade       string     `json:"grade"`
	DueDate     string     `json:"dueDate"`
	CoverImage  string     `json:"coverImage"`
}

// UpdateProjectInput carries the fields a PATCH may change
type UpdateProjectInput struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	DueDate     *string               `json:"dueDate"`
	Status      *models.ProjectStatus `json:"status"`
	Progress    *int                  `json:"progress"`
}

// parseDueDate accepts an RFC 3339 timestamp or a plain date. Empty means
// no due date.
func parseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, &validation.Error{Field: "dueDate", Message: "Due date must be a date like 2026-05-01"}
}

// ProjectService handles projects and the access rules every project
// scoped resource shares
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	userRepo     *repository.UserRepository
	familyRepo   *repository.FamilyRepository
	researchRepo *repository.ResearchRepository
	noteRepo     *repository.NoteRepository
	chatRepo     *repository.ChatRepository
	store        storage.ObjectStore
	httpClient   *http.Client
	maxCoverSize int64
	now          func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	familyRepo *repository.FamilyRepository,
	researchRepo *repository.ResearchRepository,
	noteRepo *repository.NoteRepository,
	chatRepo *repository.ChatRepository,
	store storage.ObjectStore,
	maxCoverSize int64,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		familyRepo:   familyRepo,
		researchRepo: researchRepo,
		noteRepo:     noteRepo,
		chatRepo:     chatRepo,
		store:        store,
		httpClient:   &http.Client{Timeout: CoverFetchTimeout},
		maxCoverSize: maxCoverSize,
		now:          time.Now,
	}
}

// Create stores a DRAFT project for a family member. A remote cover URL is
// copied into object storage on a best-effort basis.
func (s *ProjectService) Create(ctx context.Context, caller Caller, familyID string, in CreateProjectInput) (*models.Project, error) {
	if err := caller.requireParentOf(familyID); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	if in.Name == "" || in.OwnerID == "" {
		return nil, ErrProjectFieldsRequired
	}

	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetUserByID(in.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.FamilyID != familyID {
		return nil, ErrInvalidOwner
	}

	project := &models.Project{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Grade:       in.Grade,
		DueDate:     dueDate,
		CoverImage:  strings.TrimSpace(in.CoverImage),
		Status:      models.ProjectStatusDraft,
		FamilyID:    familyID,
		OwnerID:     owner.ID,
	}
	if err := s.projectRepo.CreateProject(project); err != nil {
		return nil, err
	}

	if storage.IsRemoteURL(project.CoverImage) {
		if key, err := s.promoteCover(ctx, project); err != nil {
			log.Printf("Warning: failed to store cover image for project %s: %v", project.ID, err)
		} else {
			project.CoverImage = key
		}
	}

	project.Owner = owner.Summary()
	return project, nil
}

// promoteCover copies the project's temporary cover into the bucket and
// points the project at the stored key
func (s *ProjectService) promoteCover(ctx context.Context, project *models.Project) (string, error) {
	if !storage.Enabled(s.store) {
		return "", storage.ErrDisabled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, project.CoverImage, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("cover fetch returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxCoverSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read cover: %w", err)
	}
	if int64(len(body)) > s.maxCoverSize {
		return "", fmt.Errorf("cover exceeds %d bytes", s.maxCoverSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	key := storage.ProjectImageKey(project.FamilyID, project.ID, s.now(), contentType)
	if err := s.store.Put(ctx, key, bytes.NewReader(body), contentType); err != nil {
		return "", err
	}
	if err := s.projectRepo.UpdateCoverImage(project.ID, key); err != nil {
		return "", err
	}
	return key, nil
}

// Authorize loads a project for a caller. The checks run in a fixed order:
// caller family, project existence, project family, then child ownership.
func (s *ProjectService) Authorize(caller Caller, familyID, projectID string) (*models.Project, error) {
	if !caller.InFamily(familyID) {
		return nil, ErrNotInFamily
	}
	project, err := s.projectRepo.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.FamilyID != familyID {
		return nil, ErrProjectNotInFamily
	}
	if caller.Type == models.UserTypeChild && project.OwnerID != caller.UserID {
		return nil, ErrProjectAccess
	}
	return project, nil
}

// Visible reports whether caller may see project, using the same rules as Authorize
func (s *ProjectService) Visible(caller Caller, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return s.Authorize(caller, project.FamilyID, projectID)
}

// GetDetails returns a project with owner, research, notes and chats
func (s *ProjectService) GetDetails(caller Caller, familyID, projectID string) (*models.Project, error) {
	project, err := s.Authorize(caller, familyID, projectID)
	if err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetUserByID(project.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		project.Owner = owner.Summary()
	}

	research, err := s.researchRepo.ListResearchByProject(project.ID)
	if err != nil {
		return nil, err
	}
	for i := range research {
		decorateResearch(&research[i])
	}
	project.Research = research

	if project.Notes, err = s.noteRepo.ListNotesByProject(project.ID); err != nil {
		return nil, err
	}

	chats, err := s.chatRepo.ListSessionsByProject(project.ID)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].Messages, err = s.chatRepo.ListMessages(chats[i].ID); err != nil {
			return nil, err
		}
	}
	project.Chats = chats
	return project, nil
}

// Update applies a PATCH. Children may only move their own project's
// status and progress.
func (s *ProjectService) Update(caller Caller, familyID, projectID string, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.Authorize(caller, familyID, projectID)
	if err != nil {
		return nil, err
	}
	if caller.Type == models.UserTypeChild && (in.Name != nil || in.Description != nil || in.DueDate != nil) {
		return nil, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, &validation.Error{Field: "name", Message: "Project name is required"}
		}
		project.Name = name
	}
	if in.Description != nil {
		project.Description = strings.TrimSpace(*in.Description)
	}
	if in.DueDate != nil {
		dueDate, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		project.DueDate = dueDate
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, &validation.Error{Field: "status", Message: "Status must be DRAFT, IN_PROGRESS or COMPLETED"}
		}
		project.Status = *in.Status
	}
	if in.Progress != nil {
		if err := validation.ValidateProgress(*in.Progress); err != nil {
			return nil, err
		}
		project.Progress = *in.Progress
	}

	if err := s.projectRepo.UpdateProject(project); err != nil {
		return nil, err
	}
	return project, nil
}
