package http

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	apierrors "loteriadash/internal/errors"
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// DashboardPage is the data the page template renders
type DashboardPage struct {
	Title       string
	Version     string
	Charts      []string
	AIEnabled   bool
	GeneratedAt string
}

// DashboardHandler serves the single page dashboard. The page loads its
// data from the JSON API and listens on /ws for dataset changes.
type DashboardHandler struct {
	page         func() DashboardPage
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates the page handler. page is evaluated per request.
func NewDashboardHandler(page func() DashboardPage, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		page:         page,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := h.page()
	data.GeneratedAt = time.Now().Format("2006-01-02 15:04:05")

	// Render into a buffer so template failures become a problem response
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}
