package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "loteriadash/internal/errors"
	customMiddleware "loteriadash/internal/middleware"
	"loteriadash/internal/services"
	api "loteriadash/pkg/contracts/api/v1"
)

// NarrativeHandler serves the generated texts. Every route reaches the
// external model, so the group is audited.
type NarrativeHandler struct {
	service      *services.NarrativeService
	validation   *customMiddleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewNarrativeHandler creates a new narrative handler
func NewNarrativeHandler(service *services.NarrativeService, validation *customMiddleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *NarrativeHandler {
	return &NarrativeHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "narrative_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the AI routes
func (h *NarrativeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(customMiddleware.AuditLog(h.logger))

	r.Get("/status", h.Status)
	r.Post("/ask", h.Ask)
	r.Post("/insights", h.Insights)
	r.Post("/report", h.Report)
	r.Post("/suggestions", h.Suggestions)
	r.Post("/explain", h.Explain)

	return r
}

// Status handles GET /api/ai/status so the page can hide the AI panel
func (h *NarrativeHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"configured": h.service.Configured(),
	})
}

func (h *NarrativeHandler) respond(w http.ResponseWriter, r *http.Request, n services.Narrative, err error) {
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, n)
}

// Ask handles POST /api/ai/ask
func (h *NarrativeHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req api.AskRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	n, err := h.service.Ask(r.Context(), req.Question)
	h.respond(w, r, n, err)
}

// Insights handles POST /api/ai/insights
func (h *NarrativeHandler) Insights(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Insights(r.Context())
	h.respond(w, r, n, err)
}

// Report handles POST /api/ai/report
func (h *NarrativeHandler) Report(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Report(r.Context())
	h.respond(w, r, n, err)
}

// Suggestions handles POST /api/ai/suggestions
func (h *NarrativeHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Suggestions(r.Context())
	h.respond(w, r, n, err)
}

// Explain handles POST /api/ai/explain
func (h *NarrativeHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req api.ExplainMetricRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	n, err := h.service.Explain(r.Context(), req.Metric, req.Value, req.Detail)
	h.respond(w, r, n, err)
}
