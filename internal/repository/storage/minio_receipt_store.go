package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/dafibh/giderler/giderler-backend/internal/config"
	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOReceiptStore stores receipts in a public-read MinIO bucket
type MinIOReceiptStore struct {
	client     *minio.Client
	bucketName string
	endpoint   string
	useSSL     bool
}

var _ domain.ObjectStore = (*MinIOReceiptStore)(nil)

// NewMinIOReceiptStore creates a new MinIO receipt store and ensures its
// bucket exists
func NewMinIOReceiptStore(ctx context.Context, cfg config.MinIOConfig) (*MinIOReceiptStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &MinIOReceiptStore{
		client:     client,
		bucketName: cfg.BucketName,
		endpoint:   cfg.Endpoint,
		useSSL:     cfg.UseSSL,
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureBucket creates the bucket with a public read policy if it doesn't exist
func (r *MinIOReceiptStore) ensureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := r.client.MakeBucket(ctx, r.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	if err := r.client.SetBucketPolicy(ctx, r.bucketName, publicReadPolicy(r.bucketName)); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

// Upload writes data to objectPath
func (r *MinIOReceiptStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) error {
	body, size, err := sizedBody(data, size)
	if err != nil {
		return err
	}

	_, err = r.client.PutObject(ctx, r.bucketName, objectPath, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: upload object: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// PublicURL returns scheme://endpoint/bucket/objectPath
func (r *MinIOReceiptStore) PublicURL(ctx context.Context, objectPath string) (string, error) {
	return minioObjectURL(r.endpoint, r.bucketName, r.useSSL, objectPath), nil
}
