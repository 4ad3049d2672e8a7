package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"researchnest/internal/database"
	"researchnest/internal/models"
	"researchnest/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exported_at"`
	DatabaseType string               `json:"database_type"`
	Families     []models.Family      `json:"families"`
	Users        []UserBackup         `json:"users"`
	Rewards      []models.Rewards     `json:"rewards"`
	Projects     []models.Project     `json:"projects"`
	Research     []models.Research    `json:"research"`
	Links        []models.Link        `json:"links"`
	Notes        []models.Note        `json:"notes"`
	ChatSessions []models.ChatSession `json:"chat_sessions"`
	ChatMessages []models.ChatMessage `json:"chat_messages"`
}

// UserBackup carries the password hash the public JSON shape hides
type UserBackup struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db           *database.DB
	familyRepo   *repository.FamilyRepository
	userRepo     *repository.UserRepository
	rewardsRepo  *repository.RewardsRepository
	projectRepo  *repository.ProjectRepository
	researchRepo *repository.ResearchRepository
	noteRepo     *repository.NoteRepository
	chatRepo     *repository.ChatRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{
		db:           db,
		familyRepo:   repository.NewFamilyRepository(db),
		userRepo:     repository.NewUserRepository(db),
		rewardsRepo:  repository.NewRewardsRepository(db),
		projectRepo:  repository.NewProjectRepository(db),
		researchRepo: repository.NewResearchRepository(db),
		noteRepo:     repository.NewNoteRepository(db),
		chatRepo:     repository.NewChatRepository(db),
	}
}

// Export writes a complete JSON backup to w
func (s *BackupService) Export(w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	var err error
	if backup.Families, err = s.familyRepo.ListFamilies(); err != nil {
		return nil, fmt.Errorf("failed to export families: %w", err)
	}
	users, err := s.userRepo.ListAllUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{User: u, PasswordHash: u.PasswordHash})
	}
	if backup.Rewards, err = s.rewardsRepo.ListAllRewards(); err != nil {
		return nil, fmt.Errorf("failed to export rewards: %w", err)
	}
	if backup.Projects, err = s.projectRepo.ListAllProjects(); err != nil {
		return nil, fmt.Errorf("failed to export projects: %w", err)
	}
	if backup.Research, err = s.researchRepo.ListAllResearch(); err != nil {
		return nil, fmt.Errorf("failed to export research: %w", err)
	}
	if backup.Links, err = s.researchRepo.ListAllLinks(); err != nil {
		return nil, fmt.Errorf("failed to export links: %w", err)
	}
	if backup.Notes, err = s.noteRepo.ListAllNotes(); err != nil {
		return nil, fmt.Errorf("failed to export notes: %w", err)
	}
	if backup.ChatSessions, err = s.chatRepo.ListAllSessions(); err != nil {
		return nil, fmt.Errorf("failed to export chat sessions: %w", err)
	}
	if backup.ChatMessages, err = s.chatRepo.ListAllMessages(); err != nil {
		return nil, fmt.Errorf("failed to export chat messages: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d families, %d users, %d projects, %d research, %d links, %d notes, %d chats",
		len(backup.Families), len(backup.Users), len(backup.Projects), len(backup.Research),
		len(backup.Links), len(backup.Notes), len(backup.ChatSessions))
	return backup, nil
}

// clearOrder lists tables children first
var clearOrder = []string{
	"chat_messages",
	"chat_sessions",
	"notes",
	"research_links",
	"research",
	"projects",
	"rewards",
	"password_reset_tokens",
	"users",
	"families",
}

// Import restores a backup from r in one transaction, optionally clearing
// existing rows first
func (s *BackupService) Import(r io.Reader, clear bool) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(func(tx *database.Tx) error {
		if clear {
			for _, table := range clearOrder {
				if _, err := tx.Exec("DELETE FROM " + table); err != nil {
					return fmt.Errorf("failed to clear table %s: %w", table, err)
				}
			}
		}

		for _, f := range backup.Families {
			if err := execInsert(tx, "family "+f.ID,
				"INSERT INTO families (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
				f.ID, f.Name, f.CreatedAt, f.UpdatedAt); err != nil {
				return err
			}
		}
		for _, u := range backup.Users {
			if err := execInsert(tx, "user "+u.ID,
				`INSERT INTO users (id, name, username, email, password_hash, type, avatar, color, family_id, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				u.ID, u.Name, u.Username, nullIfEmpty(u.Email), u.PasswordHash, string(u.Type),
				nullIfEmpty(u.Avatar), nullIfEmpty(u.Color), nullIfEmpty(u.FamilyID), u.CreatedAt, u.UpdatedAt); err != nil {
				return err
			}
		}
		for _, rw := range backup.Rewards {
			if err := execInsert(tx, "rewards "+rw.ID,
				"INSERT INTO rewards (id, user_id, points, stars, streak, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
				rw.ID, rw.UserID, rw.Points, rw.Stars, rw.Streak, rw.UpdatedAt); err != nil {
				return err
			}
		}
		for _, p := range backup.Projects {
			var due interface{}
			if p.DueDate != nil {
				due = p.DueDate.UTC()
			}
			if err := execInsert(tx, "project "+p.ID,
				`INSERT INTO projects (id, name, description, category, grade, due_date, cover_image, status, progress, family_id, owner_id, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, p.Name, nullIfEmpty(p.Description), nullIfEmpty(p.Category), nullIfEmpty(p.Grade), due,
				nullIfEmpty(p.CoverImage), string(p.Status), p.Progress, p.FamilyID, p.OwnerID, p.CreatedAt, p.UpdatedAt); err != nil {
				return err
			}
		}
		for _, res := range backup.Research {
			if err := execInsert(tx, "research "+res.ID,
				"INSERT INTO research (id, project_id, title, criteria, overall_summary, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
				res.ID, res.ProjectID, res.Title, res.Criteria, nullIfEmpty(res.OverallSummary), res.CreatedAt, res.UpdatedAt); err != nil {
				return err
			}
		}
		for _, l := range backup.Links {
			if err := execInsert(tx, "link "+l.ID,
				"INSERT INTO research_links (id, research_id, kind, url, title, summary, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				l.ID, l.ResearchID, string(l.Kind), l.URL, nullIfEmpty(l.Title), nullIfEmpty(l.Summary), l.Position, l.CreatedAt); err != nil {
				return err
			}
		}
		for _, n := range backup.Notes {
			if err := execInsert(tx, "note "+n.ID,
				"INSERT INTO notes (id, project_id, user_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
				n.ID, n.ProjectID, nullIfEmpty(n.UserID), nullIfEmpty(n.Title), n.Content, n.CreatedAt, n.UpdatedAt); err != nil {
				return err
			}
		}
		for _, cs := range backup.ChatSessions {
			if err := execInsert(tx, "chat session "+cs.ID,
				"INSERT INTO chat_sessions (id, user_id, project_id, persona, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
				cs.ID, cs.UserID, nullIfEmpty(cs.ProjectID), cs.Persona, cs.Title, cs.CreatedAt, cs.UpdatedAt); err != nil {
				return err
			}
		}
		for _, m := range backup.ChatMessages {
			if err := execInsert(tx, "chat message "+m.ID,
				"INSERT INTO chat_messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
				m.ID, m.SessionID, m.Role, m.Content, m.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Imported: %d families, %d users, %d projects", len(backup.Families), len(backup.Users), len(backup.Projects))
	return &backup, nil
}

func execInsert(tx *database.Tx, what, query string, args ...interface{}) error {
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to import %s: %w", what, err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
