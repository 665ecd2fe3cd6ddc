// AngelaMos | 2026
// handler_test.go

package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clergo/steago/internal/health"
	"github.com/clergo/steago/internal/testutil"
	"github.com/clergo/steago/internal/unified"
)

func ok(context.Context) error { return nil }

func serve(t *testing.T, h *health.Handler, path string) (*httptest.ResponseRecorder, health.ReadinessResponse) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body health.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestReadiness_AllHealthy(t *testing.T) {
	reg, _, _ := testutil.NewRegistry()
	h := health.NewHandler(
		health.Dependency{Name: "database", Checker: health.CheckerFunc(ok)},
		health.Dependency{Name: "models", Checker: health.ModelsReady(reg)},
	)

	rec, body := serve(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "database", body.Checks[0].Name)
	assert.Equal(t, "models", body.Checks[1].Name)
}

func TestReadiness_Degraded(t *testing.T) {
	tests := []struct {
		name string
		dep  health.Dependency
	}{
		{"ping error", health.Dependency{Name: "redis", Checker: health.CheckerFunc(func(context.Context) error {
			return errors.New("connection refused")
		})}},
		{"unbound models", health.Dependency{Name: "models", Checker: health.ModelsReady(unified.NewRegistry())}},
		{"missing checker", health.Dependency{Name: "database"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, health.NewHandler(tt.dep), "/readyz")
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, "degraded", body.Status)
			require.Len(t, body.Checks, 1)
			assert.False(t, body.Checks[0].Healthy)
		})
	}
}

func TestShutdownAndNotReady(t *testing.T) {
	h := health.NewHandler()

	rec, body := serve(t, h, "/livez")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)

	h.SetReady(false)
	rec, body = serve(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body.Status)

	h.SetShutdown(true)
	rec, body = serve(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "shutting_down", body.Status)
}
