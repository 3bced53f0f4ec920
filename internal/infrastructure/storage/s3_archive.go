// Package storage provides archives for rendered reports.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/openaccounting/backend/internal/application/reporting"
	infraconfig "github.com/openaccounting/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3BillArchive implements BillArchive
var _ reporting.BillArchive = (*S3BillArchive)(nil)

// S3BillArchive stores rendered bills in an S3-compatible bucket
// (AWS S3, MinIO, and friends).
type S3BillArchive struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3BillArchiveOption is a functional option for configuring S3BillArchive
type S3BillArchiveOption func(*S3BillArchive)

// WithLogger sets a custom logger for S3BillArchive
func WithLogger(logger *zap.Logger) S3BillArchiveOption {
	return func(a *S3BillArchive) {
		a.logger = logger
	}
}

// NewS3BillArchive creates a new S3BillArchive from configuration
func NewS3BillArchive(cfg *infraconfig.StorageConfig, opts ...S3BillArchiveOption) (*S3BillArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3BillArchive{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// Store uploads a rendered bill and returns its object location
func (a *S3BillArchive) Store(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", errors.New("object key is required")
	}

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object %q: %w", key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	a.logger.Info("Bill archived",
		zap.String("location", location),
		zap.Int("bytes", len(data)))
	return location, nil
}
