// Package storage wraps the S3 bucket holding project media.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrDisabled is returned by every operation when no bucket is configured
var ErrDisabled = errors.New("object storage not configured")

// PresignExpiry is how long proxied media URLs stay valid
const PresignExpiry = time.Hour

// ObjectStore is the subset of object storage the services need
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Config selects the bucket and endpoint
type Config struct {
	Region       string
	Bucket       string
	Endpoint     string
	UsePathStyle bool
	Debug        bool
}

// S3Store stores objects in a single S3 bucket
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	enabled bool
	debug   bool
}

// NewS3Store creates an S3-backed store. An empty bucket yields a
// disabled store whose operations return ErrDisabled.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		log.Println("Object storage disabled: AWS_S3_BUCKET not configured")
		return &S3Store{debug: cfg.Debug}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	log.Printf("Object storage enabled: bucket=%s, region=%s", cfg.Bucket, cfg.Region)
	if cfg.Debug && cfg.Endpoint != "" {
		log.Printf("[DEBUG] S3 endpoint override: %s (path style: %t)", cfg.Endpoint, cfg.UsePathStyle)
	}

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		enabled: true,
		debug:   cfg.Debug,
	}, nil
}

// IsEnabled returns whether a bucket is configured
func (s *S3Store) IsEnabled() bool {
	return s.enabled
}

// Enabled reports whether store can serve requests. Stores without an
// IsEnabled method are always enabled.
func Enabled(store ObjectStore) bool {
	if store == nil {
		return false
	}
	if e, ok := store.(interface{ IsEnabled() bool }); ok {
		return e.IsEnabled()
	}
	return true
}

// Put uploads body under key
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if !s.enabled {
		return ErrDisabled
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	if s.debug {
		log.Printf("[DEBUG] Stored object %s (%s)", key, contentType)
	}
	return nil
}

// PresignGet returns a time-limited GET URL for key
func (s *S3Store) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if !s.enabled {
		return "", ErrDisabled
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

// ProjectImageKey builds the key for a promoted cover image
func ProjectImageKey(familyID, projectID string, at time.Time, contentType string) string {
	return fmt.Sprintf("%s/projects/%s/images/%d.%s", familyID, projectID, at.UnixMilli(), ExtensionForContentType(contentType))
}

// ExtensionForContentType maps an image MIME type to a file extension,
// defaulting to png
func ExtensionForContentType(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return "jpg"
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "webp"):
		return "webp"
	case strings.Contains(ct, "gif"):
		return "gif"
	}
	return "png"
}

// ContentTypeForKey guesses a MIME type from a key's extension,
// defaulting to image/png
func ContentTypeForKey(key string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(key), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "svg":
		return "image/svg+xml"
	}
	return "image/png"
}

// IsRemoteURL reports whether ref is an http(s) URL rather than a key or emoji
func IsRemoteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
