package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	p, err := Setup(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Nil(t, p.TracerProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_ServiceNameResource(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "splash-test")
	sr := tracetest.NewSpanRecorder()

	p := New(sdktrace.WithSpanProcessor(sr))
	_, span := p.TracerProvider().Tracer("test").Start(context.Background(), "op")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	var service string
	for _, kv := range spans[0].Resource().Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "splash-test", service)
}
