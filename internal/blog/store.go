package blog

import (
	"bytes"
	"context"

	apperrors "blog-generator/internal/common/errors"
	"blog-generator/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArtifactStore persists generated text.
type ArtifactStore interface {
	Store(ctx context.Context, bucket, key, body string) error
}

type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// UploadAPI matches *manager.Uploader.
type UploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type S3ArtifactStore struct {
	client         PutObjectAPI
	uploader       UploadAPI
	multipartAbove int64
	logger         logger.Logger
}

type StoreOption func(*S3ArtifactStore)

// WithUploader routes bodies of at least one multipart part through the
// upload manager.
func WithUploader(u UploadAPI) StoreOption {
	return func(s *S3ArtifactStore) {
		s.uploader = u
	}
}

func NewS3ArtifactStore(client PutObjectAPI, log logger.Logger, opts ...StoreOption) *S3ArtifactStore {
	s := &S3ArtifactStore{
		client:         client,
		multipartAbove: manager.DefaultUploadPartSize,
		logger:         log.With(map[string]interface{}{"operation": "store"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store writes body as UTF-8 under bucket/key. Failures are never swallowed.
func (s *S3ArtifactStore) Store(ctx context.Context, bucket, key, body string) error {
	data := []byte(body)

	var err error
	if s.uploader != nil && int64(len(data)) >= s.multipartAbove {
		_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
	} else {
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		})
	}
	if err != nil {
		s.logger.Error("Error saving blog to storage", map[string]interface{}{
			"bucket": bucket,
			"key":    key,
			"error":  err.Error(),
		})
		return apperrors.NewStorageWriteFailureError(bucket, key, err)
	}

	s.logger.Debug("Blog stored", map[string]interface{}{
		"bucket": bucket,
		"key":    key,
		"bytes":  len(data),
	})
	return nil
}
