package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/campuslink/backend/internal/models"
)

var ErrFileNotFound = errors.New("file not found")

// ObjectStorage stores uploaded images in an S3-compatible bucket. Objects are
// keyed by a generated file id and tagged with per-user read/write metadata;
// deletion enforces the write tag.
type ObjectStorage struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	logger        *slog.Logger

	bucketMu    sync.Mutex
	bucketReady bool
}

func NewObjectStorage(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*ObjectStorage, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("storage: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}

	client, err := minio.New(parseEndpoint(cleanEndpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}

	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = cleanEndpoint
	}

	return &ObjectStorage{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		logger:        logger,
	}, nil
}

// Upload stores the content under a fresh file id and returns the id plus the
// preview URL clients embed in posts.
func (s *ObjectStorage) Upload(ctx context.Context, uid, contentType string, reader io.Reader, size int64) (*models.UploadResponse, error) {
	if reader == nil {
		return nil, errors.New("storage: reader is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	fileID := uuid.New().String()
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, fileID, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"read":  "user:" + uid,
			"write": "user:" + uid,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: put object: %w", err)
	}

	previewURL := s.PreviewURL(fileID)
	s.logger.Info("upload completed", "bucket", s.bucket, "file_id", fileID, "uid", uid)
	return &models.UploadResponse{FileID: fileID, URL: previewURL}, nil
}

// Delete removes the object iff uid carries its write tag.
func (s *ObjectStorage) Delete(ctx context.Context, uid, fileID string) error {
	info, err := s.client.StatObject(ctx, s.bucket, fileID, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrFileNotFound
		}
		return fmt.Errorf("storage: stat object: %w", err)
	}

	owner := info.UserMetadata["Write"]
	if owner == "" {
		owner = info.UserMetadata["write"]
	}
	if owner != "user:"+uid {
		return ErrUnauthorized
	}

	if err := s.client.RemoveObject(ctx, s.bucket, fileID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: remove object: %w", err)
	}
	return nil
}

// PreviewURL derives the public URL for a stored file id.
func (s *ObjectStorage) PreviewURL(fileID string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, fileID)
}

// ensureBucket checks the bucket once per process lifetime. Only success is
// remembered; a transient failure is retried on the next upload.
func (s *ObjectStorage) ensureBucket(ctx context.Context) error {
	s.bucketMu.Lock()
	defer s.bucketMu.Unlock()

	if s.bucketReady {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage: check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("storage: create bucket: %w", err)
		}
		if err := s.allowPublicRead(ctx); err != nil {
			return err
		}
	}

	s.bucketReady = true
	return nil
}

func (s *ObjectStorage) allowPublicRead(ctx context.Context) error {
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("storage: set bucket policy: %w", err)
	}
	return nil
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}
