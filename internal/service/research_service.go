package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"researchnest/internal/ai"
	"researchnest/internal/citation"
	"researchnest/internal/models"
	"researchnest/internal/repository"
	"researchnest/internal/validation"
)

var (
	ErrResearchNotFound = errors.New("research not found")
	ErrLinkNotFound     = errors.New("link not found")
	ErrSummaryFailed    = errors.New("failed to generate summary")
)

// LinkInput is a collected source
type LinkInput struct {
	URL     string          `json:"url"`
	Kind    models.LinkKind `json:"kind"`
	Title   string          `json:"title"`
	Summary string          `json:"summary"`
}

// ResearchService manages research entries, their links and AI summaries
type ResearchService struct {
	researchRepo *repository.ResearchRepository
	projects     *ProjectService
	completer    ai.Completer
}

// NewResearchService creates a new research service
func NewResearchService(researchRepo *repository.ResearchRepository, projects *ProjectService, completer ai.Completer) *ResearchService {
	return &ResearchService{researchRepo: researchRepo, projects: projects, completer: completer}
}

// Create adds a research entry to a project
func (s *ResearchService) Create(caller Caller, familyID, projectID, title, criteria string) (*models.Research, error) {
	project, err := s.projects.Authorize(caller, familyID, projectID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &validation.Error{Field: "title", Message: "Title is required"}
	}

	research := &models.Research{ProjectID: project.ID, Title: title, Criteria: strings.TrimSpace(criteria)}
	if err := s.researchRepo.CreateResearch(research); err != nil {
		return nil, err
	}
	return research, nil
}

// load returns a research entry after checking it sits under the path project
func (s *ResearchService) load(caller Caller, familyID, projectID, researchID string) (*models.Research, error) {
	if _, err := s.projects.Authorize(caller, familyID, projectID); err != nil {
		return nil, err
	}
	research, err := s.researchRepo.GetResearchByID(researchID)
	if err != nil {
		return nil, err
	}
	if research == nil || research.ProjectID != projectID {
		return nil, ErrResearchNotFound
	}
	return research, nil
}

// Get returns a research entry with links and rendered summary
func (s *ResearchService) Get(caller Caller, familyID, projectID, researchID string) (*models.Research, error) {
	research, err := s.load(caller, familyID, projectID, researchID)
	if err != nil {
		return nil, err
	}
	decorateResearch(research)
	return research, nil
}

// AddLink appends a source to a research entry
func (s *ResearchService) AddLink(caller Caller, familyID, projectID, researchID string, in LinkInput) (*models.Link, error) {
	research, err := s.load(caller, familyID, projectID, researchID)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(strings.TrimSpace(in.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &validation.Error{Field: "url", Message: "A valid http(s) URL is required"}
	}
	if in.Kind == "" {
		in.Kind = inferLinkKind(u)
	}
	if !in.Kind.Valid() {
		return nil, &validation.Error{Field: "kind", Message: "Kind must be WEB, VIDEO or IMAGE"}
	}

	link := &models.Link{
		ResearchID: research.ID,
		Kind:       in.Kind,
		URL:        u.String(),
		Title:      strings.TrimSpace(in.Title),
		Summary:    strings.TrimSpace(in.Summary),
	}
	if err := s.researchRepo.CreateLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

func inferLinkKind(u *url.URL) models.LinkKind {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "youtu.be":
		return models.LinkKindVideo
	}
	return models.LinkKindWeb
}

// DeleteLink removes a source from a research entry
func (s *ResearchService) DeleteLink(caller Caller, familyID, projectID, researchID, linkID string) error {
	research, err := s.load(caller, familyID, projectID, researchID)
	if err != nil {
		return err
	}
	link, err := s.researchRepo.GetLinkByID(linkID)
	if err != nil {
		return err
	}
	if link == nil || link.ResearchID != research.ID {
		return ErrLinkNotFound
	}
	return s.researchRepo.DeleteLink(link.ID)
}

// Summarize asks the completion endpoint for a cited markdown summary of
// the entry's links and stores it
func (s *ResearchService) Summarize(ctx context.Context, caller Caller, familyID, projectID, researchID string) (*models.Research, error) {
	research, err := s.load(caller, familyID, projectID, researchID)
	if err != nil {
		return nil, err
	}

	links := research.AllLinks()
	if len(links) == 0 {
		return nil, &validation.Error{Field: "links", Message: "Add at least one link before summarizing"}
	}
	sources := make([]ai.Source, 0, len(links))
	for _, l := range links {
		sources = append(sources, ai.Source{ID: l.ID, Kind: string(l.Kind), Title: l.Title, URL: l.URL, Summary: l.Summary})
	}

	summary, err := s.completer.Complete(ctx, ai.SummaryMessages(research.Title, research.Criteria, sources), ai.ChatTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummaryFailed, err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: %v", ErrSummaryFailed, ai.ErrEmptyResponse)
	}

	if err := s.researchRepo.UpdateSummary(research.ID, summary); err != nil {
		return nil, err
	}
	research.OverallSummary = summary
	decorateResearch(research)
	return research, nil
}

// decorateResearch fills the rendered summary and citation ids
func decorateResearch(r *models.Research) {
	if r.OverallSummary == "" {
		return
	}
	rendered, err := citation.Render(r.OverallSummary, r.AllLinks())
	if err != nil {
		log.Printf("Warning: failed to render summary for research %s: %v", r.ID, err)
		return
	}
	r.SummaryHTML = rendered
	r.Citations = citation.Extract(r.OverallSummary)
}
