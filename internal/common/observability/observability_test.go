package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestObserveInvocationExportsToRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := New("blog-generator-test", reg)
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	obs.ObserveInvocation(context.Background(), "ok", 200, 250*time.Millisecond)
	obs.ObserveInvocation(context.Background(), "malformed_request", 400, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, mf := range families {
		names = append(names, strings.ReplaceAll(mf.GetName(), ".", "_"))
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "blog_invocations")
	assert.Contains(t, joined, "blog_invocation_duration")
}

func TestInitTracingWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing("blog-generator", "test", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerProviderResource(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := newTracerProvider(sdktrace.WithSpanProcessor(recorder), "blog-generator", "1.2.3")
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "generate")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "generate", spans[0].Name())

	var service string
	for _, kv := range spans[0].Resource().Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "blog-generator", service)
}
