// internal/common/aws/bedrock.go
package aws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockOptions configures the inference client transport.
type BedrockOptions struct {
	Region      string
	ReadTimeout time.Duration
	MaxAttempts int
}

// BedrockLoadOptions returns the SDK load options for the inference client.
// The read timeout is applied both to the whole request and to the wait for
// response headers, since a long generation only starts streaming at the end.
// Retries on transient transport errors are left to the SDK standard retryer.
func BedrockLoadOptions(opts BedrockOptions) []func(*config.LoadOptions) error {
	httpClient := awshttp.NewBuildableClient().
		WithTimeout(opts.ReadTimeout).
		WithTransportOptions(func(tr *http.Transport) {
			tr.ResponseHeaderTimeout = opts.ReadTimeout
		})

	return []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
		config.WithHTTPClient(httpClient),
		config.WithRetryer(func() sdkaws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = opts.MaxAttempts
			})
		}),
	}
}

// NewBedrockClient builds a bedrock-runtime client with the extended timeout
// and bounded retry count.
func NewBedrockClient(ctx context.Context, opts BedrockOptions) (*bedrockruntime.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, BedrockLoadOptions(opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load bedrock config: %w", err)
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}
