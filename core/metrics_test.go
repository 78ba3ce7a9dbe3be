package core

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	. "github.com/Comcast/sheaf/util/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	boom := errors.New("boom")
	acts := NewActions().
		Add("id", identity).
		Add("fail", func(ctx context.Context, params interface{}) (interface{}, error) {
			return nil, boom
		})

	r := NewRun(acts)
	r.Metrics = m

	_, err = r.RunBatch(context.Background(), Dwimjs(`{
  "loop": {"()": {"on": [1, 2, 3], "limit": 2}, "{}": {"id": {"()": "$loop", "push": "xs"}}}
}`), nil)
	require.NoError(t, err)

	assert.Equal(t, 3.0, promtest.ToFloat64(m.Calls.WithLabelValues("id", "action", "ok")))
	assert.Equal(t, 3.0, promtest.ToFloat64(m.Calls.WithLabelValues("push", "combinator", "ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Calls.WithLabelValues("loop", "combinator", "ok")))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.LoopInflight))

	_, err = r.RunBatch(context.Background(), Dwimjs(`{"fail": {}}`), nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Calls.WithLabelValues("fail", "action", "error")))

	// Registering twice fails.
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	acts := NewActions().Add("id", identity)
	r := NewRun(acts)
	r.Tracer = tp.Tracer(TracerName)

	_, err := r.RunBatch(context.Background(), Dwimjs(`{"id": {"save": "x"}, "nope": {}}`), nil)
	var unknown *UnknownAction
	require.ErrorAs(t, err, &unknown)

	// The saved continuation of "id" may or may not have ended
	// before the failure was returned, so only look at "nope".
	var found bool
	for _, s := range rec.Ended() {
		for _, kv := range s.Attributes() {
			if kv.Key == "sheaf.name" && kv.Value.AsString() == "nope" {
				found = true
				assert.Equal(t, codes.Error, s.Status().Code)
			}
		}
	}
	assert.True(t, found)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewRun(NewActions().Add("id", identity))
	r.Logger = zap.New(core)

	_, err := r.RunBatch(context.Background(), Dwimjs(`{"id": {}}`), nil)
	require.NoError(t, err)

	calls := logs.FilterMessage("call").All()
	require.Len(t, calls, 1)
	assert.Equal(t, "id", calls[0].ContextMap()["call"])
	assert.Equal(t, r.Id, calls[0].ContextMap()["run"])
}
