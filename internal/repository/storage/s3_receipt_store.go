package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	cfg "github.com/dafibh/giderler/giderler-backend/internal/config"
	"github.com/dafibh/giderler/giderler-backend/internal/domain"
)

// S3ReceiptStore stores receipts in an S3 bucket. URLs are either built
// from a public base URL or presigned on demand.
type S3ReceiptStore struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
	urlTTL        time.Duration
}

var _ domain.ObjectStore = (*S3ReceiptStore)(nil)

// NewS3ReceiptStore creates a new S3 receipt store
func NewS3ReceiptStore(ctx context.Context, s3cfg cfg.S3Config) (*S3ReceiptStore, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Endpoint override for LocalStack and other S3-compatible services
	var client *s3.Client
	if s3cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	store := &S3ReceiptStore{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        s3cfg.Bucket,
		publicBaseURL: s3cfg.PublicBaseURL,
		urlTTL:        s3cfg.URLTTL,
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureBucket creates the bucket if it doesn't exist. The bucket stays
// private; public access, if any, comes from publicBaseURL.
func (r *S3ReceiptStore) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket (may be permission denied): %w", err)
	}

	_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Upload writes data to objectPath
func (r *S3ReceiptStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) error {
	body, size, err := sizedBody(data, size)
	if err != nil {
		return err
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(objectPath),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("%w: upload object: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// PublicURL returns a URL for objectPath: publicBaseURL/objectPath when a
// base URL is configured, otherwise a presigned GET URL valid for urlTTL.
func (r *S3ReceiptStore) PublicURL(ctx context.Context, objectPath string) (string, error) {
	if r.publicBaseURL != "" {
		return joinURL(r.publicBaseURL, objectPath), nil
	}

	presignedReq, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectPath),
	}, s3.WithPresignExpires(r.urlTTL))
	if err != nil {
		return "", fmt.Errorf("%w: presign url: %w", domain.ErrStoreUnavailable, err)
	}
	return presignedReq.URL, nil
}
