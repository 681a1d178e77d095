package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sems/integration-service/constants"
)

// Archiver stores a copy of a processed document before its transient file is
// released. Archival is best-effort; callers log failures and move on.
type Archiver interface {
	Archive(ctx context.Context, key string, body io.Reader) error
}

// S3Archiver writes documents to an S3 bucket.
type S3Archiver struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

func NewS3Archiver(ctx context.Context, bucket, region string, logger *slog.Logger) (*S3Archiver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		logger: logger,
	}, nil
}

func (a *S3Archiver) Archive(ctx context.Context, key string, body io.Reader) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(constants.PDFContentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", a.bucket, key, err)
	}
	a.logger.Info("document archived", "bucket", a.bucket, "key", key)
	return nil
}
