package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"loteriadash/internal/dataprocessing"
	apierrors "loteriadash/internal/errors"
	customMiddleware "loteriadash/internal/middleware"
	"loteriadash/internal/services"
	api "loteriadash/pkg/contracts/api/v1"
	"loteriadash/pkg/contracts/domain"
)

const defaultMaxLag = 20

// StatsHandler exposes the statistical helpers over the filtered table
type StatsHandler struct {
	service      *services.DatasetService
	validation   *customMiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *services.DatasetService, validation *customMiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StatsHandler {
	return &StatsHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "stats_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the stats routes
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/outliers", h.Outliers)
	r.Get("/groups", h.Groups)
	r.Get("/frequencies", h.Frequencies)
	r.Get("/trend", h.Trend)
	r.Get("/missing", h.Missing)
	r.Get("/uniformity", h.Uniformity)
	r.Get("/normality", h.Normality)
	r.Get("/autocorrelation", h.Autocorrelation)
	r.Get("/describe", h.Describe)

	return r
}

// parse binds the stats query, defaulting the column, and builds the criteria
func (h *StatsHandler) parse(w http.ResponseWriter, r *http.Request, defaultColumn string) (api.StatsQuery, dataprocessing.Criteria, bool) {
	q := api.StatsQuery{Column: defaultColumn}
	if err := h.validation.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, dataprocessing.Criteria{}, false
	}
	criteria, err := services.Criteria(q.FilterRequest, q.DateRangeRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, dataprocessing.Criteria{}, false
	}
	return q, criteria, true
}

func (h *StatsHandler) respond(w http.ResponseWriter, r *http.Request, result interface{}, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Outliers handles GET /api/stats/outliers?column=
func (h *StatsHandler) Outliers(w http.ResponseWriter, r *http.Request) {
	q, c, ok := h.parse(w, r, domain.ColNumero)
	if !ok {
		return
	}
	result, err := h.service.Outliers(r.Context(), c, q.Column)
	h.respond(w, r, result, err)
}

// Groups handles GET /api/stats/groups?group_by=&value=
func (h *StatsHandler) Groups(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.parse(w, r, "")
	if !ok {
		return
	}
	g := api.GroupStatsQuery{GroupBy: domain.ColAnio, Value: domain.ColNumero}
	if err := h.validation.BindQuery(r, &g); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	result, err := h.service.GroupStats(r.Context(), c, g)
	h.respond(w, r, result, err)
}

// Frequencies handles GET /api/stats/frequencies?column=&top=
func (h *StatsHandler) Frequencies(w http.ResponseWriter, r *http.Request) {
	q, c, ok := h.parse(w, r, domain.ColNumero)
	if !ok {
		return
	}
	result, err := h.service.Frequencies(r.Context(), c, q.Column, q.Top)
	h.respond(w, r, map[string]interface{}{
		"column":      q.Column,
		"frequencies": result,
	}, err)
}

// Trend handles GET /api/stats/trend?column=
func (h *StatsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	q, c, ok := h.parse(w, r, domain.ColNumero)
	if !ok {
		return
	}
	result, err := h.service.Trend(r.Context(), c, q.Column)
	h.respond(w, r, result, err)
}

// Missing handles GET /api/stats/missing. Counts refer to the raw source.
func (h *StatsHandler) Missing(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Missing(r.Context())
	h.respond(w, r, map[string]interface{}{"missing": result}, err)
}

// Uniformity handles GET /api/stats/uniformity?column=
func (h *StatsHandler) Uniformity(w http.ResponseWriter, r *http.Request) {
	q, c, ok := h.parse(w, r, domain.ColUltimoDigito)
	if !ok {
		return
	}
	result, err := h.service.Uniformity(r.Context(), c, q.Column)
	h.respond(w, r, result, err)
}

// Normality handles GET /api/stats/normality?column=
func (h *StatsHandler) Normality(w http.ResponseWriter, r *http.Request) {
	q, c, ok := h.parse(w, r, domain.ColNumero)
	if !ok {
		return
	}
	result, err := h.service.Normality(r.Context(), c, q.Column)
	h.respond(w, r, result, err)
}

// Autocorrelation handles GET /api/stats/autocorrelation?column=&max_lag=
func (h *StatsHandler) Autocorrelation(w http.ResponseWriter, r *http.Request) {
	q, c, ok := h.parse(w, r, domain.ColNumero)
	if !ok {
		return
	}
	if q.MaxLag == 0 {
		q.MaxLag = defaultMaxLag
	}
	result, err := h.service.Autocorrelation(r.Context(), c, q.Column, q.MaxLag)
	h.respond(w, r, result, err)
}

// Describe handles GET /api/stats/describe?columns=
func (h *StatsHandler) Describe(w http.ResponseWriter, r *http.Request) {
	q, c, ok := h.parse(w, r, "")
	if !ok {
		return
	}
	result, err := h.service.Describe(r.Context(), c, q.Columns...)
	h.respond(w, r, map[string]interface{}{"columns": result}, err)
}
