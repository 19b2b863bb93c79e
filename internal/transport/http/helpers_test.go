package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/require"

	"loteriadash/internal/charts"
	"loteriadash/internal/config"
	"loteriadash/internal/dataprocessing"
	apierrors "loteriadash/internal/errors"
	customMiddleware "loteriadash/internal/middleware"
	"loteriadash/internal/narrative"
	"loteriadash/internal/services"
	"loteriadash/internal/shared/testutil"
	ws "loteriadash/internal/websocket"
)

const datasetName = "premio_mayor_loteria_medellin.csv"

type testServer struct {
	router  http.Handler
	dataset *services.DatasetService
	hub     *ws.Hub
	logs    *testutil.BufferedSlogHandler
}

// newTestServer mounts every handler over a dataset in dir. gen may be nil.
func newTestServer(t *testing.T, dir string, gen narrative.Generator) *testServer {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := customMiddleware.NewValidationMiddleware(logger, errorHandler)

	hub := ws.NewHub(logger)
	cache := dataprocessing.NewCache(dataprocessing.NewLoader(dir, datasetName, logger, nil))
	dataset := services.NewDatasetService(cache, nil, logger, services.WithPublisher(hub))
	narr := services.NewNarrativeService(gen, dataset, services.NarrativeConfig{Model: "test-model"}, nil, logger)
	paths := &config.Paths{ReportsDir: t.TempDir()}
	health := services.NewHealthService("1.2.0-test", "", paths, dataset, narr, hub, logger)

	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.NotFound(errorHandler.NotFound)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := NewHealthHandler(health, logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/dataset", NewDatasetHandler(dataset, validation, logger, errorHandler).Routes())
		r.Mount("/stats", NewStatsHandler(dataset, validation, logger, errorHandler).Routes())
		r.Mount("/charts", NewChartHandler(dataset, validation, logger, errorHandler).Routes())
		r.Mount("/ai", NewNarrativeHandler(narr, validation, logger, errorHandler).Routes())
		r.Post("/client-log", NewClientLogHandler(validation, logger, errorHandler).Handle)

		metrics := NewMetricsHandler(nil, hub)
		r.Get("/ws/stats", metrics.WebSocketStats)
	})

	r.Handle("/metrics", NewMetricsHandler(nil, hub))
	r.Handle("/ws", NewWebSocketHandler(hub, WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024}, logger))
	r.Handle("/", NewDashboardHandler(func() DashboardPage {
		return DashboardPage{
			Title:     config.AppName,
			Version:   config.AppVersion,
			Charts:    charts.Names(),
			AIEnabled: narr.Configured(),
		}
	}, logger, errorHandler))

	return &testServer{router: r, dataset: dataset, hub: hub, logs: logs}
}

func cleanServer(t *testing.T, gen narrative.Generator) *testServer {
	t.Helper()
	return newTestServer(t, testutil.WriteDataset(t, datasetName, testutil.CleanDrawsCSV), gen)
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
