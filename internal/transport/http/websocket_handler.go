package http

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	apierrors "loteriadash/internal/errors"
	"loteriadash/internal/infrastructure"
	customMiddleware "loteriadash/internal/middleware"
	ws "loteriadash/internal/websocket"
)

// WebSocketConfig tunes the upgrade
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	PongWait        time.Duration
	// DevMode accepts any origin
	DevMode bool
}

// WebSocketHandler upgrades /ws and hands the connection to the hub, which
// pushes dataset reload and invalidation events.
type WebSocketHandler struct {
	hub      *ws.Hub
	cfg      WebSocketConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a websocket handler
func NewWebSocketHandler(hub *ws.Hub, cfg WebSocketConfig, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:    hub,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "websocket_handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.ErrorContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			apiErr := *apierrors.ErrWebSocketUpgrade
			apiErr.StatusCode = status
			apiErr.Details = reason.Error()
			apierrors.WriteError(w, &apiErr)
		},
	}
	return h
}

// checkOrigin allows same-host pages and the configured origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.cfg.DevMode {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	if slices.Contains(h.cfg.AllowedOrigins, origin) || slices.Contains(h.cfg.AllowedOrigins, "*") {
		return true
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.cfg.AllowedOrigins))
	return false
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.EnsureTraceID(r.Context())
	traceID := infrastructure.GetTraceID(ctx)

	h.logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", customMiddleware.GetRealIP(r)),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("user_agent", r.UserAgent()))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already answered through its Error hook
		return
	}

	client := ws.NewClient(h.hub, ws.NewConnection(conn), traceID, h.cfg.PongWait, h.logger)
	h.hub.Serve(client)

	h.logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", customMiddleware.GetRealIP(r)))
}
