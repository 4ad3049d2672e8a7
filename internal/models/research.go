package models

import "time"

// LinkKind distinguishes the three link collections of a research entry
type LinkKind string

const (
	LinkKindWeb   LinkKind = "WEB"
	LinkKindVideo LinkKind = "VIDEO"
	LinkKindImage LinkKind = "IMAGE"
)

// Valid reports whether k is a known kind
func (k LinkKind) Valid() bool {
	switch k {
	case LinkKindWeb, LinkKindVideo, LinkKindImage:
		return true
	}
	return false
}

// Research is a child's investigation within a project.
// OverallSummary is markdown that may cite links as [label](source:<linkId>).
type Research struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	Title          string    `json:"title"`
	Criteria       string    `json:"criteria"`
	OverallSummary string    `json:"overallSummary,omitempty"`
	SummaryHTML    string    `json:"summaryHtml,omitempty"`
	Citations      []string  `json:"citations,omitempty"`
	WebLinks       []Link    `json:"webLinks"`
	YtLinks        []Link    `json:"ytLinks"`
	ImgLinks       []Link    `json:"imgLinks"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AllLinks returns every link regardless of kind
func (r *Research) AllLinks() []Link {
	all := make([]Link, 0, len(r.WebLinks)+len(r.YtLinks)+len(r.ImgLinks))
	all = append(all, r.WebLinks...)
	all = append(all, r.YtLinks...)
	return append(all, r.ImgLinks...)
}

// AddLink appends l to the collection matching its kind
func (r *Research) AddLink(l Link) {
	switch l.Kind {
	case LinkKindVideo:
		r.YtLinks = append(r.YtLinks, l)
	case LinkKindImage:
		r.ImgLinks = append(r.ImgLinks, l)
	default:
		r.WebLinks = append(r.WebLinks, l)
	}
}

// Link is a collected source
type Link struct {
	ID         string    `json:"id"`
	ResearchID string    `json:"researchId"`
	Kind       LinkKind  `json:"type"`
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}
