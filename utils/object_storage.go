package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ObjectStorage is the capability contract against the blob store. It has no
// transactional semantics: the import saga compensates a successful Upload
// with a Delete when the database transaction fails.
//
// Delete on a missing key must not fail — compensation is idempotent from the
// caller's perspective.
type ObjectStorage interface {
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) error
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectKey string) error
}

// GenerateObjectKey builds a globally unique object key for an uploaded file.
// The random 128-bit prefix makes collisions negligible; the original file
// name is kept for operators browsing the bucket.
func GenerateObjectKey(fileName string) string {
	return fmt.Sprintf("%s_%s", uuid.New().String(), fileName)
}

type MinioObjectStorage struct {
	client     *minio.Client
	bucketName string
}

func NewMinioObjectStorage(client *minio.Client, bucketName string) *MinioObjectStorage {
	return &MinioObjectStorage{client: client, bucketName: bucketName}
}

func (s *MinioObjectStorage) Upload(ctx context.Context, objectKey string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucketName,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", objectKey, err)
	}
	return nil
}

func (s *MinioObjectStorage) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s: %w", objectKey, err)
	}
	return obj, nil
}

// Delete removes the object. RemoveObject succeeds for keys that do not
// exist, which is exactly the idempotence the compensation path relies on.
func (s *MinioObjectStorage) Delete(ctx context.Context, objectKey string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectKey, err)
	}
	return nil
}
