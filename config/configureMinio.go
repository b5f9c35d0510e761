package config

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// InitMinioClient connects to the object store and makes sure the import
// bucket exists. The bucket holds the raw uploaded files, one object per
// import attempt.
func InitMinioClient(ctx context.Context, bucketName string) *minio.Client {
	endpoint := GetEnvDefault("MINIO_ENDPOINT", "localhost:9000")
	accessKey := GetEnvDefault("MINIO_ACCESS_KEY", "minioadmin")
	secretKey := GetEnvDefault("MINIO_SECRET_KEY", "minioadmin")
	useSSL := GetEnv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		Logger.Fatal("Failed to create MinIO client", zap.Error(err))
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		Logger.Fatal("Failed to check MinIO bucket", zap.String("bucket", bucketName), zap.Error(err))
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			Logger.Fatal("Failed to create MinIO bucket", zap.String("bucket", bucketName), zap.Error(err))
		}
		Logger.Info("Created MinIO bucket", zap.String("bucket", bucketName))
	}

	return client
}
