package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loteriadash/internal/config"
	"loteriadash/internal/services"
	"loteriadash/internal/shared/testutil"
)

func TestHealthHandler_Readiness(t *testing.T) {
	t.Run("degraded without a generator", func(t *testing.T) {
		srv := cleanServer(t, nil)

		rec := srv.do(t, http.MethodGet, "/api/health/ready", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, services.StatusDegraded, body["status"])
		svcs := body["services"].(map[string]interface{})
		assert.Equal(t, services.StatusReady, svcs["dataset"].(map[string]interface{})["status"])
		assert.Equal(t, services.StatusDegraded, svcs["narrative"].(map[string]interface{})["status"])
	})

	t.Run("not ready without the dataset", func(t *testing.T) {
		srv := newTestServer(t, t.TempDir(), nil)

		rec := srv.do(t, http.MethodGet, "/api/health/ready", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, services.StatusNotReady, decode(t, rec)["status"])
	})
}

func TestHealthHandler_LivenessAndVersion(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", decode(t, rec)["status"])

	rec = srv.do(t, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, config.AppName, body["name"])
	assert.Equal(t, "1.2.0-test", body["version"])

	rec = srv.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandler_Disabled(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	apiErr := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "METRICS_DISABLED", apiErr["error_code"])

	rec = srv.do(t, http.MethodGet, "/api/ws/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["active_clients"])
}

func TestClientLogHandler(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/client-log",
		`{"level":"error","message":"chart image failed","source":"dashboard","data":{"chart":"frecuencia_digitos"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["success"])
	assert.True(t, srv.logs.ContainsMessage("chart image failed"))
	assert.True(t, srv.logs.ContainsAttr("client_source", "dashboard"))

	for _, body := range []string{`{"level":"fatal","message":"x"}`, `{"level":"info"}`, `not json`} {
		rec = srv.do(t, http.MethodPost, "/api/client-log", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestDashboardHandler(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), config.AppName)
	assert.Contains(t, rec.Body.String(), "/api/charts/")
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, testutil.WriteDataset(t, datasetName, testutil.CleanDrawsCSV), nil)

	rec := srv.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
