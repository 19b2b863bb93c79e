package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "loteriadash/internal/errors"
	"loteriadash/internal/narrative"
)

func echoGenerator(prompts *[]string) narrative.Generator {
	return narrative.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		*prompts = append(*prompts, prompt)
		return "El número 1111 salió dos veces.", nil
	})
}

func TestNarrativeHandler_Ask(t *testing.T) {
	var prompts []string
	srv := cleanServer(t, echoGenerator(&prompts))

	rec := srv.do(t, http.MethodPost, "/api/ai/ask", `{"question":"¿Qué número se repite?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "ask", body["kind"])
	assert.Equal(t, "El número 1111 salió dos veces.", body["text"])
	assert.Equal(t, "test-model", body["model"])

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "¿Qué número se repite?")
}

func TestNarrativeHandler_Validation(t *testing.T) {
	var prompts []string
	srv := cleanServer(t, echoGenerator(&prompts))

	for _, body := range []string{`{"question":""}`, `{"question":`, `{"metric":""}`} {
		path := "/api/ai/ask"
		if strings.Contains(body, "metric") {
			path = "/api/ai/explain"
		}
		rec := srv.do(t, http.MethodPost, path, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, prompts)
}

func TestNarrativeHandler_Routes(t *testing.T) {
	var prompts []string
	srv := cleanServer(t, echoGenerator(&prompts))

	for _, path := range []string{"/api/ai/insights", "/api/ai/report", "/api/ai/suggestions"} {
		rec := srv.do(t, http.MethodPost, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := srv.do(t, http.MethodPost, "/api/ai/explain", `{"metric":"p_value","value":0.03}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, prompts, 4)
	assert.True(t, srv.logs.ContainsMessage("audit log"))
}

func TestNarrativeHandler_Unconfigured(t *testing.T) {
	srv := cleanServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/ai/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["configured"])

	rec = srv.do(t, http.MethodPost, "/api/ai/insights", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apierrors.TypeNarrative, decode(t, rec)["type"])
}

func TestNarrativeHandler_GeneratorFailure(t *testing.T) {
	srv := cleanServer(t, narrative.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("upstream closed the connection")
	}))

	rec := srv.do(t, http.MethodPost, "/api/ai/insights", "")
	assert.GreaterOrEqual(t, rec.Code, http.StatusInternalServerError)
	assert.Equal(t, apierrors.TypeNarrative, decode(t, rec)["type"])
}
