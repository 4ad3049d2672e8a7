package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPasswordResetTokenIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future expiration", time.Now().Add(1 * time.Hour), false},
		{"just expired", time.Now().Add(-1 * time.Second), true},
		{"expired yesterday", time.Now().Add(-24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := PasswordResetToken{Token: "t", UserID: "u", ExpiresAt: tt.expiresAt}
			if got := token.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectStatus(t *testing.T) {
	tests := []struct {
		status ProjectStatus
		valid  bool
		active bool
	}{
		{ProjectStatusDraft, true, true},
		{ProjectStatusInProgress, true, true},
		{ProjectStatusCompleted, true, false},
		{"ARCHIVED", false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
		})
	}
}

func TestUserJSONOmitsSecretsAndEmptyEmail(t *testing.T) {
	u := User{ID: "1", Name: "Billy", Username: "billy", PasswordHash: "hash", Type: UserTypeChild}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	body := string(data)

	if strings.Contains(body, "hash") {
		t.Errorf("password hash leaked: %s", body)
	}
	if strings.Contains(body, `"email"`) {
		t.Errorf("empty email should be omitted: %s", body)
	}
}

func TestResearchLinkCollections(t *testing.T) {
	var r Research
	r.AddLink(Link{ID: "w", Kind: LinkKindWeb})
	r.AddLink(Link{ID: "v", Kind: LinkKindVideo})
	r.AddLink(Link{ID: "i", Kind: LinkKindImage})

	if len(r.WebLinks) != 1 || len(r.YtLinks) != 1 || len(r.ImgLinks) != 1 {
		t.Fatalf("links not split by kind: %+v", r)
	}

	all := r.AllLinks()
	if len(all) != 3 || all[0].ID != "w" || all[2].ID != "i" {
		t.Errorf("AllLinks() = %+v", all)
	}
}
