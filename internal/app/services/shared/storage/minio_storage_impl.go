// Package storage persists audit screenshots in the external object store.
package storage

import (
	"bytes"
	"context"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"time"

	"github.com/minio/minio-go/v7"
)

type minioStorage struct {
	MinioClient *minio.Client
	BucketName  string
}

func NewMinioStorage(minioClient *minio.Client, driverConfig *config.DriverConfig) contracts.AuditStorage {
	return &minioStorage{
		MinioClient: minioClient,
		BucketName:  driverConfig.Minio.BucketName,
	}
}

func (m *minioStorage) PutScreenshot(ctx context.Context, objectName string, data []byte) (string, error) {
	_, err := m.MinioClient.PutObject(
		ctx,
		m.BucketName,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: constvars.MIMEImagePNG,
		},
	)
	if err != nil {
		return "", exceptions.ErrMinioCreateObject(err, m.BucketName)
	}
	return objectName, nil
}

func (m *minioStorage) PresignedURL(ctx context.Context, reference string, expiry time.Duration) (string, error) {
	url, err := m.MinioClient.PresignedGetObject(ctx, m.BucketName, reference, expiry, nil)
	if err != nil {
		return "", exceptions.ErrMinioPresignObject(err, reference)
	}
	return url.String(), nil
}
