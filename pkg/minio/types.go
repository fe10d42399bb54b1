package minio

import (
	"context"
	"sync"

	"github.com/minio/minio-go/v7"
)

// Config is the connection configuration of a MinIO (or S3-compatible) endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// MinIO is the object storage used for state backups.
type MinIO interface {
	// Connect verifies the endpoint is reachable and the credentials are valid.
	Connect(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Close() error

	// EnsureBucket creates the bucket when it does not exist yet.
	EnsureBucket(ctx context.Context, bucketName string) error
	// PutObject stores data under bucketName/objectName, overwriting any previous object.
	PutObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
}

type implMinIO struct {
	minioClient *minio.Client
	config      Config
	mu          sync.RWMutex
	connected   bool
}
