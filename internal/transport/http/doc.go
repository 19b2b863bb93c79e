// Package http implements the HTTP handlers of the dashboard. Handlers are a
// thin layer over the services: they bind and validate the request, call a
// service and render the result.
//
// # Routes
//
//	GET  /api/dataset/summary|report|records|export
//	POST /api/dataset/reload
//	GET  /api/stats/{outliers,groups,frequencies,trend,missing,uniformity,normality,autocorrelation,describe}
//	GET  /api/charts, /api/charts/{name}, /api/charts/{name}.png
//	POST /api/ai/{ask,insights,report,suggestions,explain}
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	GET  /ws, /metrics, /
//
// Table filters (from, to, year, number_min, number_max, series_min,
// series_max) are accepted by every read of the table.
//
// # Error Handling
//
// Services return errors.AppError values; handlers pass them to the
// ErrorHandler, which writes RFC 7807 problems:
//
//	{
//	    "type": "/errors/dataset/not-found",
//	    "title": "Resource Not Found",
//	    "status": 404,
//	    "detail": "dataset not found: ...",
//	    "searched_path": "/srv/data/premio_mayor_loteria_medellin.csv",
//	    "available_files": ["otro.csv"]
//	}
//
// # Testing
//
// Handlers are tested with httptest against real services built over
// temporary dataset files.
package http
