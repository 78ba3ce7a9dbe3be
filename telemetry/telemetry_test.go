package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))

	logger, err = NewLogger("debug", "console")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)

	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}

func TestSetupTracing(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	ctx := context.Background()
	cfg := DefaultTracingConfig("sheaf-test")
	// Nothing listens here.  Export failures only show up at
	// shutdown.
	cfg.OTLPEndpoint = "127.0.0.1:1"

	shutdown, err := SetupTracing(ctx, cfg, nil)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "x")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ShutdownTracing(shutdown, 100*time.Millisecond, nil)
}
