// internal/common/aws/s3.go
package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures the artifact store client. Endpoint, when set, points
// the client at an S3-compatible server (MinIO, LocalStack) and forces
// path-style addressing.
type S3Options struct {
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

func s3LoadOptions(opts S3Options) []func(*config.LoadOptions) error {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	return loadOpts
}

func applyS3Options(opts S3Options) func(*s3.Options) {
	return func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = sdkaws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
		if opts.UsePathStyle {
			o.UsePathStyle = true
		}
	}
}

func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, s3LoadOptions(opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}
	return s3.NewFromConfig(cfg, applyS3Options(opts)), nil
}

// NewS3Uploader returns a multipart upload manager sharing the client.
func NewS3Uploader(client *s3.Client) *manager.Uploader {
	return manager.NewUploader(client)
}
