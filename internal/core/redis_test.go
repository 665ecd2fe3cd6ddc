// AngelaMos | 2026
// redis_test.go

package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/clergo/steago/internal/core"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestTracingHook_Process(t *testing.T) {
	rec := recordSpans(t)
	hook := core.TracingHook{}

	failed := errors.New("READONLY")
	process := hook.ProcessHook(func(context.Context, redis.Cmder) error { return failed })
	err := process(context.Background(), redis.NewStringCmd(context.Background(), "set", "k", "v"))
	assert.ErrorIs(t, err, failed)

	miss := hook.ProcessHook(func(context.Context, redis.Cmder) error { return redis.Nil })
	assert.ErrorIs(t, miss(context.Background(), redis.NewStringCmd(context.Background(), "get", "k")), redis.Nil)

	spans := rec.Ended()
	if assert.Len(t, spans, 2) {
		assert.Equal(t, "redis.set", spans[0].Name())
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "redis.get", spans[1].Name())
		assert.Equal(t, codes.Unset, spans[1].Status().Code)
	}
}

func TestTracingHook_Pipeline(t *testing.T) {
	rec := recordSpans(t)

	pipeline := core.TracingHook{}.ProcessPipelineHook(
		func(context.Context, []redis.Cmder) error { return nil },
	)
	cmds := []redis.Cmder{
		redis.NewStatusCmd(context.Background(), "ping"),
		redis.NewIntCmd(context.Background(), "exists", "k"),
	}
	assert.NoError(t, pipeline(context.Background(), cmds))

	spans := rec.Ended()
	if assert.Len(t, spans, 1) {
		assert.Equal(t, "redis.pipeline", spans[0].Name())
	}
}
