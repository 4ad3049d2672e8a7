package service

import (
	"errors"
	"strings"

	"researchnest/internal/models"
	"researchnest/internal/repository"
	"researchnest/internal/validation"
)

var ErrNoteNotFound = errors.New("note not found")

// NoteInput is the note editor form
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteService manages free-text project notes
type NoteService struct {
	noteRepo *repository.NoteRepository
	projects *ProjectService
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo *repository.NoteRepository, projects *ProjectService) *NoteService {
	return &NoteService{noteRepo: noteRepo, projects: projects}
}

func validateNote(in NoteInput) error {
	if strings.TrimSpace(in.Content) == "" {
		return &validation.Error{Field: "content", Message: "Content is required"}
	}
	return nil
}

// Create adds a note to a project
func (s *NoteService) Create(caller Caller, familyID, projectID string, in NoteInput) (*models.Note, error) {
	project, err := s.projects.Authorize(caller, familyID, projectID)
	if err != nil {
		return nil, err
	}
	if err := validateNote(in); err != nil {
		return nil, err
	}

	note := &models.Note{
		ProjectID: project.ID,
		UserID:    caller.UserID,
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
	}
	if err := s.noteRepo.CreateNote(note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) load(caller Caller, familyID, projectID, noteID string) (*models.Note, error) {
	if _, err := s.projects.Authorize(caller, familyID, projectID); err != nil {
		return nil, err
	}
	note, err := s.noteRepo.GetNoteByID(noteID)
	if err != nil {
		return nil, err
	}
	if note == nil || note.ProjectID != projectID {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// Update replaces a note's title and content
func (s *NoteService) Update(caller Caller, familyID, projectID, noteID string, in NoteInput) (*models.Note, error) {
	note, err := s.load(caller, familyID, projectID, noteID)
	if err != nil {
		return nil, err
	}
	if err := validateNote(in); err != nil {
		return nil, err
	}
	note.Title = strings.TrimSpace(in.Title)
	note.Content = in.Content
	if err := s.noteRepo.UpdateNote(note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note
func (s *NoteService) Delete(caller Caller, familyID, projectID, noteID string) error {
	note, err := s.load(caller, familyID, projectID, noteID)
	if err != nil {
		return err
	}
	return s.noteRepo.DeleteNote(note.ID)
}
