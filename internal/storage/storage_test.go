package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestExtensionForContentType(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":               "jpg",
		"image/jpg":                "jpg",
		"image/png":                "png",
		"image/webp":               "webp",
		"image/gif":                "gif",
		"IMAGE/JPEG; charset=utf8": "jpg",
		"application/octet-stream": "png",
		"":                         "png",
	}
	for ct, want := range tests {
		if got := ExtensionForContentType(ct); got != want {
			t.Errorf("ExtensionForContentType(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	tests := map[string]string{
		"f/projects/p/images/1.jpg":  "image/jpeg",
		"f/projects/p/images/1.JPEG": "image/jpeg",
		"a/b.svg":                    "image/svg+xml",
		"a/b.webp":                   "image/webp",
		"a/b.gif":                    "image/gif",
		"a/b":                        "image/png",
	}
	for key, want := range tests {
		if got := ContentTypeForKey(key); got != want {
			t.Errorf("ContentTypeForKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestProjectImageKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	got := ProjectImageKey("fam", "proj", at, "image/webp")
	if got != "fam/projects/proj/images/1700000000123.webp" {
		t.Errorf("ProjectImageKey() = %q", got)
	}
}

func TestIsRemoteURL(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"https://example.com/a.png", true},
		{"http://example.com/a.png", true},
		{"🌋", false},
		{"fam/projects/p/images/1.png", false},
	}
	for _, tt := range tests {
		if got := IsRemoteURL(tt.ref); got != tt.want {
			t.Errorf("IsRemoteURL(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestDisabledStore(t *testing.T) {
	s, err := NewS3Store(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if s.IsEnabled() {
		t.Fatal("store without bucket should be disabled")
	}
	if err := s.Put(context.Background(), "k", strings.NewReader("x"), "image/png"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Put() error = %v, want ErrDisabled", err)
	}
	if _, err := s.PresignGet(context.Background(), "k", time.Minute); !errors.Is(err, ErrDisabled) {
		t.Errorf("PresignGet() error = %v, want ErrDisabled", err)
	}
}

func TestPresignUsesEndpointAndPathStyle(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	s, err := NewS3Store(context.Background(), Config{
		Region:       "us-east-1",
		Bucket:       "media",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	u, err := s.PresignGet(context.Background(), "fam/projects/p/images/1.png", PresignExpiry)
	if err != nil {
		t.Fatalf("PresignGet() error = %v", err)
	}
	if !strings.HasPrefix(u, "http://localhost:9000/media/fam/projects/p/images/1.png?") {
		t.Errorf("presigned URL = %q", u)
	}
	if !strings.Contains(u, "X-Amz-Expires=3600") {
		t.Errorf("presigned URL missing 1h expiry: %q", u)
	}
}

type plainStore struct{}

func (plainStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}

func (plainStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

func TestEnabled(t *testing.T) {
	disabled, err := NewS3Store(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		store ObjectStore
		want  bool
	}{
		{"nil", nil, false},
		{"s3 without bucket", disabled, false},
		{"s3 with bucket", &S3Store{enabled: true}, true},
		{"store without IsEnabled", plainStore{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Enabled(tt.store); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
