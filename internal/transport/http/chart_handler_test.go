package http

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loteriadash/internal/charts"
	apierrors "loteriadash/internal/errors"
)

func TestChartHandler_List(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/charts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, len(charts.Names()), body["count"])

	views := body["charts"].([]interface{})
	require.Len(t, views, len(charts.Names()))
	first := views[0].(map[string]interface{})
	assert.Equal(t, charts.Names()[0], first["name"])
	assert.Equal(t, "/api/charts/"+charts.Names()[0]+".png", first["png"])
}

func TestChartHandler_GetChart(t *testing.T) {
	srv := cleanServer(t, nil)
	name := charts.Names()[0]

	rec := srv.do(t, http.MethodGet, "/api/charts/"+name, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode(t, rec)["type"])

	rec = srv.do(t, http.MethodGet, "/api/charts/torta", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	problem := decode(t, rec)
	assert.Equal(t, apierrors.TypeChartNotFound, problem["type"])
	assert.Len(t, problem["available_charts"], len(charts.Names()))
}

func TestChartHandler_PNG(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/charts/"+charts.Names()[0]+".png", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = srv.do(t, http.MethodGet, "/api/charts/torta.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
