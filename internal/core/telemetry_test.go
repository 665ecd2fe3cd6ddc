// AngelaMos | 2026
// telemetry_test.go

package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"

	"github.com/clergo/steago/internal/config"
	"github.com/clergo/steago/internal/core"
)

func TestNewTelemetry_DisabledIsLocal(t *testing.T) {
	tel, err := core.NewTelemetry(
		context.Background(),
		config.OtelConfig{Enabled: false, ServiceName: "steago-api"},
		config.AppConfig{Version: "1.0.0", Environment: "test"},
	)
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSpans_RecordErrorsAndTraceID(t *testing.T) {
	rec := recordSpans(t)

	assert.Empty(t, core.TraceIDFromContext(context.Background()))

	ctx, span := core.StartSpan(context.Background(), "steago/test", "workspace.create")
	assert.NotEmpty(t, core.TraceIDFromContext(ctx))
	core.EndSpan(span, errors.New("duplicate key"))

	_, ok := core.StartSpan(context.Background(), "steago/test", "workspace.get")
	core.EndSpan(ok, nil)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "duplicate key", spans[0].Status().Description)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}
