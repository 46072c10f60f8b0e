package generateblog

import (
	"context"
	"time"

	"blog-generator/internal/blog"
)

// Output is written back as process variables when the job completes.
type Output struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	S3Key      string `json:"s3Key"`
	Bucket     string `json:"bucket"`
	RequestID  string `json:"requestId"`
}

// Pipeline runs one event end to end.
type Pipeline interface {
	Invoke(ctx context.Context, ev *blog.Event) blog.Invocation
}

// Claimer guards against processing a redelivered job twice. A finished job
// keeps its Output under the claim key so a redelivery can complete with it.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Record(ctx context.Context, key, value string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (string, bool, error)
}
