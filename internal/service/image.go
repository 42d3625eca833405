package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/forkful/backend/config"
)

// ImageStore persists decoded image payloads and returns a URL by which the
// image can be referenced.
type ImageStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}

// DecodeImagePayload accepts either a data URL ("data:image/png;base64,...")
// or a plain URL reference. A URL passes through with empty data.
func DecodeImagePayload(payload string) (data []byte, contentType, url string, err error) {
	if !strings.HasPrefix(payload, "data:") {
		return nil, "", payload, nil
	}

	rest := strings.TrimPrefix(payload, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, "", "", fmt.Errorf("%w: image payload is not base64-encoded", ErrValidation)
	}
	contentType = rest[:sep]
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", "", fmt.Errorf("%w: unsupported image content type %q", ErrValidation, contentType)
	}

	data, err = base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: invalid base64 image data", ErrValidation)
	}
	return data, contentType, "", nil
}

func imageFileName(contentType string) string {
	ext := "png"
	if i := strings.Index(contentType, "/"); i >= 0 && i+1 < len(contentType) {
		ext = contentType[i+1:]
	}
	return fmt.Sprintf("%s.%s", uuid.New().String(), ext)
}

// S3ImageStore uploads images to S3 and returns the public object URL.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("recipe-images/%s", imageFileName(contentType))

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}

// LocalImageStore writes images under a media directory served by the
// application itself. Used in development and tests.
type LocalImageStore struct {
	dir     string
	baseURL string
}

func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
	return &LocalImageStore{dir: dir, baseURL: baseURL}
}

func (s *LocalImageStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	name := imageFileName(contentType)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + name, nil
}
