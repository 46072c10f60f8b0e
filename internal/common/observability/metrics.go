package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	invocationCounter  otelmetric.Int64Counter
	invocationDuration otelmetric.Float64Histogram
}

// New registers the OTel instruments on the given Prometheus registerer, so
// they are served by the same /metrics handler as the promauto collectors.
func New(serviceName string, registerer prometheus.Registerer) (*Observability, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	invocationCounter, err := meter.Int64Counter(
		"blog.invocations",
		otelmetric.WithDescription("Number of blog generation invocations"),
	)
	if err != nil {
		return nil, err
	}

	invocationDuration, err := meter.Float64Histogram(
		"blog.invocation.duration",
		otelmetric.WithDescription("Blog generation invocation duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		invocationCounter:  invocationCounter,
		invocationDuration: invocationDuration,
	}, nil
}

func (o *Observability) ObserveInvocation(ctx context.Context, outcome string, statusCode int, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("status_code", statusCode),
	)
	o.invocationCounter.Add(ctx, 1, attrs)
	o.invocationDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
