package repository

import (
	"database/sql"
	"fmt"

	"researchnest/internal/database"
	"researchnest/internal/models"
)

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

func insertFamily(q database.DBTX, f *models.Family) error {
	if f.ID == "" {
		f.ID = newID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now()
		f.UpdatedAt = f.CreatedAt
	}
	_, err := q.Exec("INSERT INTO families (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		f.ID, f.Name, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}
	return nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID string) (*models.Family, error) {
	query := "SELECT id, name, created_at, updated_at FROM families WHERE id = ?"
	family := &models.Family{}
	err := r.db.QueryRow(query, familyID).Scan(&family.ID, &family.Name, &family.CreatedAt, &family.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// ListFamilies returns every family, oldest first
func (r *FamilyRepository) ListFamilies() ([]models.Family, error) {
	rows, err := r.db.Query("SELECT id, name, created_at, updated_at FROM families ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var f models.Family
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, f)
	}
	return families, rows.Err()
}
