// Package storage is the facade over the external media host (S3). Uploads
// return a public URL plus an opaque object key; deletion accepts either.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/config"
)

// UploadResult is what the media host hands back for a stored object.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IMediaStorage defines the interface for media host operations.
type IMediaStorage interface {
	Upload(ctx context.Context, data []byte, filename, contentType, folder string) (*UploadResult, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, error)
	PublicURL(key string) string
}

// mediaStorage implements IMediaStorage on S3.
type mediaStorage struct {
	cfg      *config.Config
	s3Client *s3.Client
}

// NewMediaStorage creates a new S3-backed media storage service.
func NewMediaStorage(cfg *config.Config) (IMediaStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &mediaStorage{
		cfg:      cfg,
		s3Client: s3.NewFromConfig(awsCfg),
	}, nil
}

// NewMediaStorageWithClient wires an existing S3 client (used by the task
// processor which shares the client created in main).
func NewMediaStorageWithClient(cfg *config.Config, client *s3.Client) IMediaStorage {
	return &mediaStorage{cfg: cfg, s3Client: client}
}

// Upload stores an object under folder with a generated key and returns its
// public URL and key.
func (m *mediaStorage) Upload(ctx context.Context, data []byte, filename, contentType, folder string) (*UploadResult, error) {
	if folder == "" {
		folder = "uploads"
	}
	// Sanitize the client-supplied filename; only the base name survives.
	safeName := strings.ReplaceAll(path.Base(filename), " ", "_")
	key := fmt.Sprintf("%s/%d/%s_%s", folder, time.Now().UTC().Year(), uuid.NewString(), safeName)

	_, err := m.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return &UploadResult{URL: m.PublicURL(key), Key: key}, nil
}

// Put overwrites an object in place, keeping its key (and therefore its
// public URL) stable.
func (m *mediaStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := m.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// Download fetches an object's bytes by key.
func (m *mediaStorage) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := m.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.AwsS3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// Delete removes an object by key.
func (m *mediaStorage) Delete(ctx context.Context, key string) error {
	_, err := m.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.cfg.AwsS3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL builds the public URL for a key following the host's URL
// convention: MEDIA_BASE_URL/<key> when configured, otherwise the standard
// virtual-hosted S3 form.
func (m *mediaStorage) PublicURL(key string) string {
	if m.cfg.MediaBaseURL != "" {
		return strings.TrimSuffix(m.cfg.MediaBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.cfg.AwsS3Bucket, m.cfg.AwsRegion, key)
}

// KeyFromURL extracts the object key from a public URL. Pure string parsing
// on the host's URL convention; accepts both the configured base URL and
// the standard S3 form.
func (m *mediaStorage) KeyFromURL(rawURL string) (string, error) {
	return ExtractKey(rawURL, m.cfg.MediaBaseURL)
}

// ExtractKey parses the object key out of a media URL. Split out as a pure
// function so it can be tested without a client.
func ExtractKey(rawURL, baseURL string) (string, error) {
	if baseURL != "" {
		base := strings.TrimSuffix(baseURL, "/") + "/"
		if strings.HasPrefix(rawURL, base) {
			key := strings.TrimPrefix(rawURL, base)
			if key == "" {
				return "", fmt.Errorf("media URL %q has no object key", rawURL)
			}
			return key, nil
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid media URL %q: %w", rawURL, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", fmt.Errorf("media URL %q has no object key", rawURL)
	}
	return key, nil
}
