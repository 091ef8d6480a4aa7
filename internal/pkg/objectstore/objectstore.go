// Package objectstore uploads export artifacts to S3.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"search-insight-miner/config"
)

// ErrDisabled is returned by Upload when no bucket is configured.
var ErrDisabled = errors.New("object store disabled (EXPORT_BUCKET not set)")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes objects into a single bucket.
type Uploader struct {
	client putObjectAPI
	bucket string
	logger *zap.SugaredLogger
}

// NewUploader returns a disabled uploader when EXPORT_BUCKET is empty.
func NewUploader(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Uploader, error) {
	bucket := strings.TrimSpace(cfg.Export.Bucket)
	if bucket == "" {
		logger.Infow("objectstore_disabled")
		return &Uploader{logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Export.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	logger.Infow("objectstore_enabled", "bucket", bucket, "region", cfg.Export.Region)
	return &Uploader{client: s3.NewFromConfig(awsCfg), bucket: bucket, logger: logger}, nil
}

// Enabled reports whether uploads reach a bucket.
func (u *Uploader) Enabled() bool {
	return u != nil && u.client != nil
}

// Upload stores body under key.
func (u *Uploader) Upload(ctx context.Context, key string, body io.Reader) error {
	if !u.Enabled() {
		return ErrDisabled
	}
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(xlsxContentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}
	u.logger.Infow("objectstore_uploaded", "bucket", u.bucket, "key", key)
	return nil
}
