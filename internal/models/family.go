package models

import "time"

// Family is the authorization root grouping users and projects
type Family struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Users     []FamilyMember `json:"users,omitempty"`
	Projects  []Project      `json:"projects,omitempty"`
	Stats     *FamilyStats   `json:"stats,omitempty"`
}

// FamilyMember is a user with per-user project counts
type FamilyMember struct {
	User
	ActiveProjects    int `json:"activeProjects"`
	CompletedProjects int `json:"completedProjects"`
}

// FamilyStats backs the parent dashboard cards
type FamilyStats struct {
	ActiveProjects    int `json:"activeProjects"`
	CompletedProjects int `json:"completedProjects"`
	DueThisWeek       int `json:"dueThisWeek"`
	AverageProgress   int `json:"averageProgress"`
}
