package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "loteriadash/internal/errors"
	"loteriadash/internal/exporter"
	customMiddleware "loteriadash/internal/middleware"
	"loteriadash/internal/services"
	api "loteriadash/pkg/contracts/api/v1"
)

// DatasetHandler serves the draw table: summary, load report, records,
// reload and downloads.
type DatasetHandler struct {
	service      *services.DatasetService
	validation   *customMiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service *services.DatasetService, validation *customMiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/summary", h.GetSummary)
	r.Get("/report", h.GetReport)
	r.Get("/records", h.GetRecords)
	r.Get("/export", h.Export)
	r.With(customMiddleware.AuditLog(h.logger)).Post("/reload", h.Reload)

	return r
}

// GetSummary handles GET /api/dataset/summary
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var q api.CriteriaQuery
	if err := h.validation.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	criteria, err := services.Criteria(q.FilterRequest, q.DateRangeRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// GetReport handles GET /api/dataset/report
func (h *DatasetHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"report":            report,
		"dropped_rows":      report.DroppedRows(),
		"dropped_by_reason": report.DroppedByReason(),
	})
}

// GetRecords handles GET /api/dataset/records
func (h *DatasetHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	q := api.RecordsQuery{
		PaginationRequest: api.PaginationRequest{Page: 1, PageSize: services.DefaultPageSize},
		Order:             "asc",
	}
	if err := h.validation.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.Records(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// Reload handles POST /api/dataset/reload. The source is read again
// regardless of the cache state.
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "dataset reload requested",
		slog.String("request_id", middleware.GetReqID(ctx)))

	report, err := h.service.Reload(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":       "reloaded",
		"report":       report,
		"dropped_rows": report.DroppedRows(),
	})
}

// Export handles GET /api/dataset/export?format=csv|xlsx. The filtered
// table is streamed as an attachment.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	var q struct {
		api.ExportQuery
		api.CriteriaQuery
	}
	q.Format = exporter.FormatCSV
	if err := h.validation.BindQuery(r, &q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	criteria, err := services.Criteria(q.FilterRequest, q.DateRangeRequest)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Resolve the table first so load failures still render as problems
	if _, err := h.service.Filtered(r.Context(), criteria); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType(q.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.FileName(q.Format, time.Now())))
	if err := h.service.WriteExport(r.Context(), w, q.Format, criteria); err != nil {
		// Headers are gone once the body started; log only
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", q.Format),
			slog.String("error", err.Error()))
	}
}
