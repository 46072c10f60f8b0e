// Package app wires configuration into a ready blog pipeline. Both the
// long-running service and the local invoke tool build on it.
package app

import (
	"context"
	"fmt"

	"blog-generator/internal/blog"
	awsclients "blog-generator/internal/common/aws"
	"blog-generator/internal/common/config"
	"blog-generator/internal/common/database"
	"blog-generator/internal/common/logger"
	"blog-generator/internal/common/metrics"
	"blog-generator/internal/common/observability"
	"blog-generator/internal/gateway"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
)

type Options struct {
	// Trigger labels invocation metrics, e.g. "http", "zeebe" or "cli".
	Trigger string
	// Registerer receives the OTel instruments. Defaults to the global registry.
	Registerer prometheus.Registerer
}

type App struct {
	Config  *config.Config
	Service *blog.Service
	Redis   *database.RedisClient // nil unless redis.address is set

	readiness []gateway.ReadinessCheck
	closers   []func(context.Context) error
	logger    logger.Logger
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	a := &App{Config: cfg, logger: log}

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(cfg.App.Name, cfg.App.Version, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, shutdown)
	}

	obs, err := observability.New(cfg.App.Name, opts.Registerer)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, obs.Shutdown)

	bedrockClient, err := awsclients.NewBedrockClient(ctx, awsclients.BedrockOptions{
		Region:      cfg.AWS.BedrockRegion(),
		ReadTimeout: cfg.AWS.Bedrock.ReadTimeoutDuration(),
		MaxAttempts: cfg.AWS.Bedrock.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	s3Client, err := awsclients.NewS3Client(ctx, awsclients.S3Options{
		Region:          cfg.AWS.S3Region(),
		Endpoint:        cfg.AWS.S3.Endpoint,
		UsePathStyle:    cfg.AWS.S3.UsePathStyle,
		AccessKeyID:     cfg.AWS.S3.AccessKeyID,
		SecretAccessKey: cfg.AWS.S3.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}

	deps := blog.ServiceDependencies{
		Generator: blog.NewGenerator(bedrockClient, cfg.AWS.Bedrock.ModelID, log),
		Store:     blog.NewS3ArtifactStore(s3Client, log, blog.WithUploader(awsclients.NewS3Uploader(s3Client))),
		Recorder:  blog.Recorders{metrics.NewRecorder(opts.Trigger), obs},
		Logger:    log,
	}

	if cfg.AWS.SNS.Enabled {
		snsClient, err := awsclients.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		deps.Notifier = blog.NewSNSNotifier(snsClient, cfg.AWS.SNS.TopicARN)
	}

	a.Service = blog.NewService(cfg.AWS.S3.Bucket, deps)
	a.readiness = append(a.readiness, bucketCheck(s3Client, cfg.AWS.S3.Bucket))

	if cfg.Redis.Address != "" {
		a.Redis = database.NewRedis(cfg.Redis)
		a.readiness = append(a.readiness, gateway.ReadinessCheck{Name: "redis", Check: a.Redis.Ping})
		a.closers = append(a.closers, func(context.Context) error { return a.Redis.Close() })
	}

	log.Info("Blog pipeline initialized", map[string]interface{}{
		"modelId":       cfg.AWS.Bedrock.ModelID,
		"bedrockRegion": cfg.AWS.BedrockRegion(),
		"bucket":        cfg.AWS.S3.Bucket,
		"snsEnabled":    cfg.AWS.SNS.Enabled,
		"trigger":       opts.Trigger,
	})
	return a, nil
}

var _ blog.PublishAPI = (*awsclients.SNSClient)(nil)

type headBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

func bucketCheck(client headBucketAPI, bucket string) gateway.ReadinessCheck {
	return gateway.ReadinessCheck{
		Name: "s3",
		Check: func(ctx context.Context) error {
			if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
				return fmt.Errorf("bucket %s: %w", bucket, err)
			}
			return nil
		},
	}
}

// AddReadinessCheck registers an extra dependency for /ready.
func (a *App) AddReadinessCheck(check gateway.ReadinessCheck) {
	a.readiness = append(a.readiness, check)
}

func (a *App) ReadinessChecks() []gateway.ReadinessCheck {
	return a.readiness
}

// Close releases resources in reverse order of creation.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("Error during shutdown", map[string]interface{}{"error": err.Error()})
		}
	}
}
