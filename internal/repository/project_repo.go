package repository

import (
	"database/sql"
	"fmt"

	"researchnest/internal/database"
	"researchnest/internal/models"
)

const projectColumns = `id, name, description, category, grade, due_date, cover_image, status, progress, family_id, owner_id, created_at, updated_at`

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(s rowScanner) (*models.Project, error) {
	var (
		p                                          models.Project
		description, category, grade, cover, status sql.NullString
		dueDate                                    sql.NullTime
	)
	err := s.Scan(&p.ID, &p.Name, &description, &category, &grade, &dueDate, &cover,
		&status, &p.Progress, &p.FamilyID, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Category = category.String
	p.Grade = grade.String
	p.CoverImage = cover.String
	p.Status = models.ProjectStatus(status.String)
	p.DueDate = timePtr(dueDate)
	return &p, nil
}

// CreateProject inserts a project, defaulting status to DRAFT
func (r *ProjectRepository) CreateProject(p *models.Project) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = models.ProjectStatusDraft
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
		p.UpdatedAt = p.CreatedAt
	}

	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, p.ID, p.Name, nullString(p.Description), nullString(p.Category),
		nullString(p.Grade), nullTime(p.DueDate), nullString(p.CoverImage), string(p.Status),
		p.Progress, p.FamilyID, p.OwnerID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProjectByID retrieves a project by ID
func (r *ProjectRepository) GetProjectByID(id string) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// UpdateProject writes the editable fields of p
func (r *ProjectRepository) UpdateProject(p *models.Project) error {
	p.UpdatedAt = now()
	query := `
		UPDATE projects
		SET name = ?, description = ?, category = ?, grade = ?, due_date = ?, status = ?, progress = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, p.Name, nullString(p.Description), nullString(p.Category), nullString(p.Grade),
		nullTime(p.DueDate), string(p.Status), p.Progress, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// UpdateCoverImage replaces the cover reference
func (r *ProjectRepository) UpdateCoverImage(id, coverImage string) error {
	_, err := r.db.Exec("UPDATE projects SET cover_image = ?, updated_at = ? WHERE id = ?", nullString(coverImage), now(), id)
	if err != nil {
		return fmt.Errorf("failed to update cover image: %w", err)
	}
	return nil
}

func (r *ProjectRepository) listProjects(query string, args ...interface{}) ([]models.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ListProjectsByFamily returns a family's projects, newest first
func (r *ProjectRepository) ListProjectsByFamily(familyID string) ([]models.Project, error) {
	return r.listProjects(`SELECT `+projectColumns+` FROM projects WHERE family_id = ? ORDER BY created_at DESC`, familyID)
}

// ListProjectsByOwner returns a child's projects, most recently updated first
func (r *ProjectRepository) ListProjectsByOwner(ownerID string) ([]models.Project, error) {
	return r.listProjects(`SELECT `+projectColumns+` FROM projects WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
}

// ListAllProjects returns every project, oldest first
func (r *ProjectRepository) ListAllProjects() ([]models.Project, error) {
	return r.listProjects(`SELECT ` + projectColumns + ` FROM projects ORDER BY created_at ASC`)
}

// CountProjects returns the number of project rows for a family
func (r *ProjectRepository) CountProjects(familyID string) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM projects WHERE family_id = ?", familyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}
