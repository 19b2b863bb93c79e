package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"loteriadash/internal/dataprocessing"
	apierrors "loteriadash/internal/errors"
	customMiddleware "loteriadash/internal/middleware"
	"loteriadash/internal/services"
	api "loteriadash/pkg/contracts/api/v1"
	"loteriadash/pkg/contracts/domain"
)

// ChartHandler serves chart configurations and rendered PNGs
type ChartHandler struct {
	service      *services.DatasetService
	validation   *customMiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service *services.DatasetService, validation *customMiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes. {name}.png is resolved inside GetChart
// since chi matches the whole segment.
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListCharts)
	r.Get("/{name}", h.GetChart)

	return r
}

// chartView is one entry of the chart list. A failed view carries its error
// and the rest of the page still renders.
type chartView struct {
	Name   string              `json:"name"`
	Config *domain.ChartConfig `json:"config,omitempty"`
	Error  string              `json:"error,omitempty"`
	PNG    string              `json:"png"`
}

func (h *ChartHandler) criteria(w http.ResponseWriter, r *http.Request) (dataprocessing.Criteria, bool) {
	var q api.CriteriaQuery
	if err := h.validation.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return dataprocessing.Criteria{}, false
	}
	c, err := services.Criteria(q.FilterRequest, q.DateRangeRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return dataprocessing.Criteria{}, false
	}
	return c, true
}

// ListCharts handles GET /api/charts
func (h *ChartHandler) ListCharts(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	results, err := h.service.Charts(r.Context(), c)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	views := make([]chartView, 0, len(results))
	failed := 0
	for _, res := range results {
		view := chartView{Name: res.Name, PNG: "/api/charts/" + res.Name + ".png"}
		if res.Err != nil {
			view.Error = res.Err.Error()
			failed++
		} else {
			cfg := res.Config
			view.Config = &cfg
		}
		views = append(views, view)
	}

	render.JSON(w, r, map[string]interface{}{
		"charts": views,
		"count":  len(views),
		"failed": failed,
	})
}

// GetChart handles GET /api/charts/{name} and GET /api/charts/{name}.png
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if base, isPNG := strings.CutSuffix(name, ".png"); isPNG {
		h.getChartPNG(w, r, base)
		return
	}

	c, ok := h.criteria(w, r)
	if !ok {
		return
	}
	cfg, err := h.service.Chart(r.Context(), c, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, cfg)
}

func (h *ChartHandler) getChartPNG(w http.ResponseWriter, r *http.Request, name string) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	// Buffer so a render failure can still become a problem response
	var buf bytes.Buffer
	if err := h.service.ChartPNG(r.Context(), c, name, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write chart",
			slog.String("chart", name),
			slog.String("error", err.Error()))
	}
}
