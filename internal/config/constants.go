package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Lotería de Medellín Dashboard"
	AppSlug    = "loteriadash"
	AppVersion = "1.2.0"

	// EnvPrefix namespaces every environment variable (LOTERIA_SERVER_PORT, ...)
	EnvPrefix = "LOTERIA"

	// Dataset
	DefaultDatasetFile = "premio_mayor_loteria_medellin.csv"

	// Narrative
	DefaultNarrativeModel = "gemini-1.5-flash"

	// Directories (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
	DefaultChartsDir  = "reports/charts"
	DefaultLogsDir    = "logs"

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
