package client

import "researchnest/internal/models"

// FamilyView is the parent dashboard aggregate
type FamilyView struct {
	models.Family
}

// Children returns the family's child members
func (v *FamilyView) Children() []models.FamilyMember {
	var out []models.FamilyMember
	for _, m := range v.Users {
		if m.Type == models.UserTypeChild {
			out = append(out, m)
		}
	}
	return out
}

// Member finds a family member by id
func (v *FamilyView) Member(userID string) (models.FamilyMember, bool) {
	for _, m := range v.Users {
		if m.ID == userID {
			return m, true
		}
	}
	return models.FamilyMember{}, false
}

// ProjectsFor returns the projects owned by userID, newest first
func (v *FamilyView) ProjectsFor(userID string) []models.Project {
	var out []models.Project
	for _, p := range v.Projects {
		if p.OwnerID == userID {
			out = append(out, p)
		}
	}
	return out
}

// StudentView is a child's own dashboard
type StudentView struct {
	models.StudentProfile
}

// ActiveProjects returns the projects still in progress
func (v *StudentView) ActiveProjects() []models.Project {
	var out []models.Project
	for _, p := range v.Projects {
		if p.Status.IsActive() {
			out = append(out, p)
		}
	}
	return out
}

// CompletedProjects returns finished projects
func (v *StudentView) CompletedProjects() []models.Project {
	var out []models.Project
	for _, p := range v.Projects {
		if p.Status == models.ProjectStatusCompleted {
			out = append(out, p)
		}
	}
	return out
}
