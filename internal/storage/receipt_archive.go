package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"mess-backend/internal/config"
)

// S3Archive writes receipts to an S3-compatible bucket (AWS S3, R2, MinIO).
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archive builds the archive from config. Returns nil, nil when the
// archive is disabled.
func NewS3Archive(ctx context.Context, cfg *config.Config) (*S3Archive, error) {
	ac := cfg.ReceiptArchive
	if !ac.Enabled {
		return nil, nil
	}
	if ac.Bucket == "" {
		return nil, fmt.Errorf("receipt archive enabled without a bucket")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(ac.Region)}
	if ac.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ac.AccessKey, ac.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if ac.Endpoint != "" {
			o.BaseEndpoint = aws.String(ac.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: ac.Bucket, prefix: ac.Prefix}, nil
}

func (a *S3Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(path.Join(a.prefix, key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
