package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"researchnest/internal/credentials"
	"researchnest/internal/models"
	"researchnest/internal/repository"
	"researchnest/internal/security"
	"researchnest/internal/validation"
)

var (
	ErrChildFieldsRequired = errors.New("name, username, and password are required")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrEmailExists         = errors.New("email already exists")
	ErrUsernameRequired    = errors.New("username is required")
	ErrStudentNotFound     = errors.New("student not found")
	ErrChildNotFound       = errors.New("child not found")
)

// BadWordChecker screens usernames
type BadWordChecker interface {
	ContainsBadWord(username string) (bool, error)
}

// CreateChildInput is the parent's form for a new child account
type CreateChildInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Color    string `json:"color"`
}

// UsernameAvailability answers a username check
type UsernameAvailability struct {
	Available   bool     `json:"available"`
	Username    string   `json:"username"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// FamilyService handles families, their children and the aggregate views
type FamilyService struct {
	userRepo     *repository.UserRepository
	familyRepo   *repository.FamilyRepository
	projectRepo  *repository.ProjectRepository
	rewardsRepo  *repository.RewardsRepository
	researchRepo *repository.ResearchRepository
	noteRepo     *repository.NoteRepository
	badWords     BadWordChecker
	now          func() time.Time
}

// NewFamilyService creates a new family service
func NewFamilyService(
	userRepo *repository.UserRepository,
	familyRepo *repository.FamilyRepository,
	projectRepo *repository.ProjectRepository,
	rewardsRepo *repository.RewardsRepository,
	researchRepo *repository.ResearchRepository,
	noteRepo *repository.NoteRepository,
	badWords BadWordChecker,
) *FamilyService {
	return &FamilyService{
		userRepo:     userRepo,
		familyRepo:   familyRepo,
		projectRepo:  projectRepo,
		rewardsRepo:  rewardsRepo,
		researchRepo: researchRepo,
		noteRepo:     noteRepo,
		badWords:     badWords,
		now:          time.Now,
	}
}

// CreateChild adds a CHILD account with zeroed rewards to familyID
func (s *FamilyService) CreateChild(caller Caller, familyID string, in CreateChildInput) (*models.User, error) {
	if err := caller.requireParentOf(familyID); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Username == "" || in.Password == "" {
		return nil, ErrChildFieldsRequired
	}

	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}

	if err := s.validateChildUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, err
		}
	}

	if err := s.duplicateChildError(in.Username, in.Email); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	child := &models.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Avatar:       in.Avatar,
		Color:        in.Color,
		FamilyID:     familyID,
	}
	if err := s.userRepo.CreateChild(child); err != nil {
		// lost a race with a concurrent insert
		if errors.Is(err, repository.ErrDuplicate) {
			if dup := s.duplicateChildError(in.Username, in.Email); dup != nil {
				return nil, dup
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return child, nil
}

// duplicateChildError reports which unique field is already in use. The
// email is only checked when given.
func (s *FamilyService) duplicateChildError(username, email string) error {
	taken, err := s.userRepo.UsernameExists(username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}
	if email == "" {
		return nil
	}
	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailExists
	}
	return nil
}

func (s *FamilyService) validateChildUsername(username string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}
	if s.badWords == nil {
		return nil
	}
	bad, err := s.badWords.ContainsBadWord(username)
	if err != nil {
		log.Printf("Warning: bad word check failed for %q: %v", username, err)
		return nil
	}
	if bad {
		return &validation.Error{Field: "username", Message: "Please choose a different username"}
	}
	return nil
}

// ResetChildPassword replaces a child's password with a generated one and
// returns it so the parent can pass it on
func (s *FamilyService) ResetChildPassword(caller Caller, familyID, childID string) (string, error) {
	if err := caller.requireParentOf(familyID); err != nil {
		return "", err
	}

	child, err := s.userRepo.GetUserByID(childID)
	if err != nil {
		return "", err
	}
	if child == nil || child.Type != models.UserTypeChild || child.FamilyID != familyID {
		return "", ErrChildNotFound
	}

	password, err := credentials.GenerateKidPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(child.ID, passwordHash); err != nil {
		return "", err
	}
	return password, nil
}

// CheckUsername reports whether username is free, suggesting alternatives
// when it is not
func (s *FamilyService) CheckUsername(username string) (*UsernameAvailability, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	taken, err := s.userRepo.UsernameExists(username)
	if err != nil {
		return nil, err
	}
	result := &UsernameAvailability{Available: !taken, Username: username}
	if !taken {
		return result, nil
	}

	candidates, err := credentials.SuggestUsernames(username, 6)
	if err != nil {
		log.Printf("Warning: failed to suggest usernames for %q: %v", username, err)
		return result, nil
	}
	for _, c := range candidates {
		if len(result.Suggestions) == 3 {
			break
		}
		exists, err := s.userRepo.UsernameExists(c)
		if err != nil {
			return nil, err
		}
		if !exists {
			result.Suggestions = append(result.Suggestions, c)
		}
	}
	return result, nil
}

// GetFamily returns the family with members, projects and dashboard stats
func (s *FamilyService) GetFamily(caller Caller, familyID string) (*models.Family, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	if !caller.InFamily(familyID) {
		return nil, ErrNotInFamily
	}

	users, err := s.userRepo.ListUsersByFamily(familyID)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.ListProjectsByFamily(familyID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	active := map[string]int{}
	completed := map[string]int{}
	for i := range projects {
		p := &projects[i]
		if owner, ok := byID[p.OwnerID]; ok {
			p.Owner = owner.Summary()
		}
		if p.Status.IsActive() {
			active[p.OwnerID]++
		} else if p.Status == models.ProjectStatusCompleted {
			completed[p.OwnerID]++
		}
		if p.Research, err = s.loadResearch(p.ID); err != nil {
			return nil, err
		}
		if p.Notes, err = s.noteRepo.ListNotesByProject(p.ID); err != nil {
			return nil, err
		}
	}

	family.Users = make([]models.FamilyMember, 0, len(users))
	for _, u := range users {
		family.Users = append(family.Users, models.FamilyMember{
			User:              u,
			ActiveProjects:    active[u.ID],
			CompletedProjects: completed[u.ID],
		})
	}
	family.Projects = projects
	family.Stats = computeStats(projects, s.now())
	return family, nil
}

func (s *FamilyService) loadResearch(projectID string) ([]models.Research, error) {
	research, err := s.researchRepo.ListResearchByProject(projectID)
	if err != nil {
		return nil, err
	}
	for i := range research {
		decorateResearch(&research[i])
	}
	return research, nil
}

// computeStats derives the dashboard cards. Due this week counts active
// projects due within the next seven days.
func computeStats(projects []models.Project, now time.Time) *models.FamilyStats {
	stats := &models.FamilyStats{}
	weekEnd := now.Add(7 * 24 * time.Hour)
	total := 0
	for _, p := range projects {
		switch {
		case p.Status.IsActive():
			stats.ActiveProjects++
			if p.DueDate != nil && !p.DueDate.Before(now) && !p.DueDate.After(weekEnd) {
				stats.DueThisWeek++
			}
		case p.Status == models.ProjectStatusCompleted:
			stats.CompletedProjects++
		}
		total += p.Progress
	}
	if len(projects) > 0 {
		stats.AverageProgress = int(math.Round(float64(total) / float64(len(projects))))
	}
	return stats
}

// GetStudent returns a child with their projects and rewards
func (s *FamilyService) GetStudent(caller Caller, studentID string) (*models.StudentProfile, error) {
	student, err := s.userRepo.GetUserByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Type != models.UserTypeChild {
		return nil, ErrStudentNotFound
	}

	switch {
	case caller.IsAdmin(), caller.UserID == student.ID:
	case caller.Type == models.UserTypeParent && caller.InFamily(student.FamilyID):
	default:
		return nil, ErrForbidden
	}

	projects, err := s.projectRepo.ListProjectsByOwner(student.ID)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	rewards, err := s.rewardsRepo.GetRewardsByUserID(student.ID)
	if err != nil {
		return nil, err
	}

	return &models.StudentProfile{User: *student, Projects: projects, Rewards: rewards}, nil
}
