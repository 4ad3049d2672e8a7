package repository

import (
	"database/sql"
	"fmt"

	"researchnest/internal/database"
	"researchnest/internal/models"
)

// RewardsRepository reads gamification counters
type RewardsRepository struct {
	db *database.DB
}

// NewRewardsRepository creates a new rewards repository
func NewRewardsRepository(db *database.DB) *RewardsRepository {
	return &RewardsRepository{db: db}
}

func insertRewards(q database.DBTX, userID string) error {
	_, err := q.Exec("INSERT INTO rewards (id, user_id, points, stars, streak, updated_at) VALUES (?, ?, 0, 0, 0, ?)",
		newID(), userID, now())
	if err != nil {
		return fmt.Errorf("failed to create rewards: %w", err)
	}
	return nil
}

func scanRewards(s rowScanner) (*models.Rewards, error) {
	rw := &models.Rewards{}
	if err := s.Scan(&rw.ID, &rw.UserID, &rw.Points, &rw.Stars, &rw.Streak, &rw.UpdatedAt); err != nil {
		return nil, err
	}
	return rw, nil
}

// GetRewardsByUserID returns nil when the user has no rewards row
func (r *RewardsRepository) GetRewardsByUserID(userID string) (*models.Rewards, error) {
	rw, err := scanRewards(r.db.QueryRow(
		"SELECT id, user_id, points, stars, streak, updated_at FROM rewards WHERE user_id = ?", userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rewards: %w", err)
	}
	return rw, nil
}

// ListAllRewards returns every rewards row
func (r *RewardsRepository) ListAllRewards() ([]models.Rewards, error) {
	rows, err := r.db.Query("SELECT id, user_id, points, stars, streak, updated_at FROM rewards")
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var out []models.Rewards
	for rows.Next() {
		rw, err := scanRewards(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rewards: %w", err)
		}
		out = append(out, *rw)
	}
	return out, rows.Err()
}
