// Package app wires the dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (LOTERIA_* environment over config.yaml over defaults)
//	2. Initialize logging, resolve and create the output directories
//	3. Initialize OpenTelemetry and the business metrics
//	4. Build the dataset loader, cache, summarizer and exporter
//	5. Create the dataset, narrative and health services and the websocket hub
//	6. Set up middleware, routes and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, then stops the server, the dataset
// watcher and the hub, flushes telemetry and closes the log file.
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
