package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"researchnest/internal/storage"
)

var ErrMediaNotFound = errors.New("file not found")

// MediaObject is a fetched stored file. The caller closes Body.
type MediaObject struct {
	Body        io.ReadCloser
	ContentType string
}

// MediaService proxies stored family media through freshly signed URLs
type MediaService struct {
	store      storage.ObjectStore
	httpClient *http.Client
}

// NewMediaService creates a new media service
func NewMediaService(store storage.ObjectStore) *MediaService {
	return &MediaService{store: store, httpClient: &http.Client{Timeout: CoverFetchTimeout}}
}

// Fetch signs a one-hour GET for familyID/key and downloads it. Every
// storage failure is reported as ErrMediaNotFound.
func (s *MediaService) Fetch(ctx context.Context, caller Caller, familyID, key string) (*MediaObject, error) {
	if !caller.InFamily(familyID) {
		return nil, ErrNotInFamily
	}
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return nil, ErrMediaNotFound
	}
	if !storage.Enabled(s.store) {
		return nil, fmt.Errorf("%w: %v", ErrMediaNotFound, storage.ErrDisabled)
	}
	fileKey := familyID + "/" + key

	signed, err := s.store.PresignGet(ctx, fileKey, storage.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaNotFound, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaNotFound, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaNotFound, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: store returned %d", ErrMediaNotFound, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "binary/octet-stream" || contentType == "application/octet-stream" {
		contentType = storage.ContentTypeForKey(fileKey)
	}
	return &MediaObject{Body: resp.Body, ContentType: contentType}, nil
}
