package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"researchnest/internal/models"
	"researchnest/internal/storage"
)

func TestMediaFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/fam1/") || strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "binary/octet-stream")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	store := newFakeStore()
	store.presignURL = srv.URL
	media := NewMediaService(store)
	member := Caller{UserID: "u1", Type: models.UserTypeChild, FamilyID: "fam1"}

	obj, err := media.Fetch(context.Background(), member, "fam1", "projects/p1/images/1.jpg")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer obj.Body.Close()
	body, _ := io.ReadAll(obj.Body)
	if string(body) != "jpeg-bytes" {
		t.Errorf("body = %q", body)
	}
	if obj.ContentType != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg from extension", obj.ContentType)
	}

	tests := []struct {
		name     string
		caller   Caller
		familyID string
		key      string
		wantErr  error
	}{
		{"other family", member, "fam2", "projects/p1/images/1.jpg", ErrNotInFamily},
		{"missing object", member, "fam1", "projects/p1/images/missing.jpg", ErrMediaNotFound},
		{"traversal", member, "fam1", "../fam2/secret.png", ErrMediaNotFound},
		{"empty key", member, "fam1", "", ErrMediaNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := media.Fetch(context.Background(), tt.caller, tt.familyID, tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMediaFetchPresignFailure(t *testing.T) {
	media := NewMediaService(newFakeStore())
	_, err := media.Fetch(context.Background(), Caller{Type: models.UserTypeAdmin}, "fam1", "a.png")
	if !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("err = %v, want ErrMediaNotFound", err)
	}
}

func TestMediaFetchDisabledStorage(t *testing.T) {
	store, err := storage.NewS3Store(context.Background(), storage.Config{})
	if err != nil {
		t.Fatal(err)
	}
	media := NewMediaService(store)

	_, err = media.Fetch(context.Background(), Caller{Type: models.UserTypeAdmin}, "fam1", "a.png")
	if !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("err = %v, want ErrMediaNotFound", err)
	}
	if !strings.Contains(err.Error(), storage.ErrDisabled.Error()) {
		t.Errorf("err = %v, want storage disabled cause", err)
	}
}
