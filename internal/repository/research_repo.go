package repository

import (
	"database/sql"
	"fmt"

	"researchnest/internal/database"
	"researchnest/internal/models"
)

const (
	researchColumns = `id, project_id, title, criteria, overall_summary, created_at, updated_at`
	linkColumns     = `id, research_id, kind, url, title, summary, position, created_at`
)

// ResearchRepository handles research entries and their links
type ResearchRepository struct {
	db *database.DB
}

// NewResearchRepository creates a new research repository
func NewResearchRepository(db *database.DB) *ResearchRepository {
	return &ResearchRepository{db: db}
}

func scanResearch(s rowScanner) (*models.Research, error) {
	var (
		res     models.Research
		summary sql.NullString
	)
	if err := s.Scan(&res.ID, &res.ProjectID, &res.Title, &res.Criteria, &summary, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.OverallSummary = summary.String
	res.WebLinks = []models.Link{}
	res.YtLinks = []models.Link{}
	res.ImgLinks = []models.Link{}
	return &res, nil
}

func scanLink(s rowScanner) (*models.Link, error) {
	var (
		l              models.Link
		kind           string
		title, summary sql.NullString
	)
	if err := s.Scan(&l.ID, &l.ResearchID, &kind, &l.URL, &title, &summary, &l.Position, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Kind = models.LinkKind(kind)
	l.Title = title.String
	l.Summary = summary.String
	return &l, nil
}

// CreateResearch inserts a research entry
func (r *ResearchRepository) CreateResearch(res *models.Research) error {
	if res.ID == "" {
		res.ID = newID()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now()
		res.UpdatedAt = res.CreatedAt
	}
	query := `INSERT INTO research (` + researchColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, res.ID, res.ProjectID, res.Title, res.Criteria, nullString(res.OverallSummary), res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create research: %w", err)
	}
	if res.WebLinks == nil {
		res.WebLinks, res.YtLinks, res.ImgLinks = []models.Link{}, []models.Link{}, []models.Link{}
	}
	return nil
}

// GetResearchByID retrieves a research entry with its links
func (r *ResearchRepository) GetResearchByID(id string) (*models.Research, error) {
	res, err := scanResearch(r.db.QueryRow(`SELECT `+researchColumns+` FROM research WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get research: %w", err)
	}
	if err := r.attachLinks(res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListResearchByProject returns a project's research with links, oldest first
func (r *ResearchRepository) ListResearchByProject(projectID string) ([]models.Research, error) {
	rows, err := r.db.Query(`SELECT `+researchColumns+` FROM research WHERE project_id = ? ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query research: %w", err)
	}

	var out []models.Research
	for rows.Next() {
		res, err := scanResearch(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan research: %w", err)
		}
		out = append(out, *res)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.attachLinks(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *ResearchRepository) attachLinks(res *models.Research) error {
	links, err := r.ListLinks(res.ID)
	if err != nil {
		return err
	}
	for _, l := range links {
		res.AddLink(l)
	}
	return nil
}

// UpdateSummary stores the generated markdown summary
func (r *ResearchRepository) UpdateSummary(id, summary string) error {
	_, err := r.db.Exec("UPDATE research SET overall_summary = ?, updated_at = ? WHERE id = ?", nullString(summary), now(), id)
	if err != nil {
		return fmt.Errorf("failed to update research summary: %w", err)
	}
	return nil
}

// CreateLink appends a link after the research entry's existing links
func (r *ResearchRepository) CreateLink(l *models.Link) error {
	if l.ID == "" {
		l.ID = newID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now()
	}

	return r.db.WithTx(func(tx *database.Tx) error {
		if err := tx.QueryRow("SELECT COUNT(*) FROM research_links WHERE research_id = ?", l.ResearchID).Scan(&l.Position); err != nil {
			return fmt.Errorf("failed to count links: %w", err)
		}
		query := `INSERT INTO research_links (` + linkColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.Exec(query, l.ID, l.ResearchID, string(l.Kind), l.URL, nullString(l.Title), nullString(l.Summary), l.Position, l.CreatedAt); err != nil {
			return fmt.Errorf("failed to create link: %w", err)
		}
		_, err := tx.Exec("UPDATE research SET updated_at = ? WHERE id = ?", now(), l.ResearchID)
		return err
	})
}

// GetLinkByID retrieves a single link
func (r *ResearchRepository) GetLinkByID(id string) (*models.Link, error) {
	l, err := scanLink(r.db.QueryRow(`SELECT `+linkColumns+` FROM research_links WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return l, nil
}

// DeleteLink removes a link
func (r *ResearchRepository) DeleteLink(id string) error {
	if _, err := r.db.Exec("DELETE FROM research_links WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

// ListLinks returns a research entry's links in insertion order
func (r *ResearchRepository) ListLinks(researchID string) ([]models.Link, error) {
	return r.queryLinks(`SELECT `+linkColumns+` FROM research_links WHERE research_id = ? ORDER BY position ASC, created_at ASC`, researchID)
}

// ListAllResearch returns every research row without links
func (r *ResearchRepository) ListAllResearch() ([]models.Research, error) {
	rows, err := r.db.Query(`SELECT ` + researchColumns + ` FROM research ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query research: %w", err)
	}
	defer rows.Close()

	var out []models.Research
	for rows.Next() {
		res, err := scanResearch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan research: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// ListAllLinks returns every link
func (r *ResearchRepository) ListAllLinks() ([]models.Link, error) {
	return r.queryLinks(`SELECT ` + linkColumns + ` FROM research_links ORDER BY created_at ASC`)
}

func (r *ResearchRepository) queryLinks(query string, args ...interface{}) ([]models.Link, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}
