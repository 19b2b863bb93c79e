package http

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "loteriadash/internal/errors"
	"loteriadash/internal/shared/testutil"
)

func TestDatasetHandler_MissingDataset(t *testing.T) {
	dir := testutil.WriteDataset(t, "otro.csv", testutil.CleanDrawsCSV)
	srv := newTestServer(t, dir, nil)

	for _, path := range []string{"/api/dataset/summary", "/api/dataset/records", "/api/stats/outliers", "/api/charts"} {
		t.Run(path, func(t *testing.T) {
			rec := srv.do(t, http.MethodGet, path, "")
			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

			problem := decode(t, rec)
			assert.Equal(t, apierrors.TypeDatasetNotFound, problem["type"])
			assert.Contains(t, problem["searched_path"], datasetName)
			assert.Equal(t, []interface{}{"otro.csv"}, problem["available_files"])
		})
	}
}

func TestDatasetHandler_MissingColumns(t *testing.T) {
	dir := testutil.WriteDataset(t, datasetName, "fecha,sorteo,numero\n2020-01-03,4500,1111\n")
	srv := newTestServer(t, dir, nil)

	rec := srv.do(t, http.MethodGet, "/api/dataset/summary", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	problem := decode(t, rec)
	assert.Equal(t, apierrors.TypeDatasetInvalid, problem["type"])
	assert.Contains(t, problem["missing_columns"], "series")
}

func TestDatasetHandler_Summary(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/dataset/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	summary := body["summary"].(map[string]interface{})
	assert.EqualValues(t, 6, summary["total_draws"])
	assert.Equal(t, false, body["filtered"])

	rec = srv.do(t, http.MethodGet, "/api/dataset/summary?year=2021", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.EqualValues(t, 2, body["summary"].(map[string]interface{})["total_draws"])
	assert.Equal(t, true, body["filtered"])
}

func TestDatasetHandler_Records(t *testing.T) {
	srv := cleanServer(t, nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "defaults",
			query:      "",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.EqualValues(t, 6, body["total"])
				assert.EqualValues(t, 1, body["page"])
				assert.Len(t, body["records"], 6)
			},
		},
		{
			name:       "newest first, paged",
			query:      "?order=desc&page_size=2",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				records := body["records"].([]interface{})
				require.Len(t, records, 2)
				assert.EqualValues(t, 4505, records[0].(map[string]interface{})["sorteo"])
				assert.EqualValues(t, 3, body["total_pages"])
			},
		},
		{
			name:       "number range",
			query:      "?number_min=3000&number_max=5000",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.EqualValues(t, 2, body["total"])
			},
		},
		{
			name:       "page size over the limit",
			query:      "?page_size=5000",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "inverted date range",
			query:      "?from=2021-01-01&to=2020-01-01",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodGet, "/api/dataset/records"+tt.query, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, decode(t, rec))
			}
		})
	}
}

func TestDatasetHandler_ReportShowsDroppedRows(t *testing.T) {
	srv := newTestServer(t, testutil.WriteDataset(t, datasetName, testutil.SampleDrawsCSV), nil)

	rec := srv.do(t, http.MethodGet, "/api/dataset/report", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Greater(t, body["dropped_rows"].(float64), float64(0))
	assert.NotEmpty(t, body["dropped_by_reason"])
}

func TestDatasetHandler_Reload(t *testing.T) {
	dir := testutil.WriteDataset(t, datasetName, testutil.CleanDrawsCSV)
	srv := newTestServer(t, dir, nil)

	rec := srv.do(t, http.MethodGet, "/api/dataset/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	testutil.WriteFile(t, dir+"/"+datasetName, testutil.CleanDrawsCSV+"2021-01-15,4506,9999,1\n")

	rec = srv.do(t, http.MethodPost, "/api/dataset/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "reloaded", body["status"])
	assert.EqualValues(t, 7, body["report"].(map[string]interface{})["output_rows"])
	assert.True(t, srv.logs.ContainsMessage("audit log"))
}

func TestDatasetHandler_Export(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/dataset/export?format=csv&year=2020", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\xEF\xBB\xBF")), "CSV starts with a BOM")
	// header plus four 2020 rows
	assert.Equal(t, 5, strings.Count(strings.TrimSpace(rec.Body.String()), "\n")+1)

	rec = srv.do(t, http.MethodGet, "/api/dataset/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rec = srv.do(t, http.MethodGet, "/api/dataset/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
