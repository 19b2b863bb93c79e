// Package config provides centralized configuration management for the
// Lotería de Medellín dashboard. It loads configuration from multiple sources,
// validates it, and resolves every file system path the application uses.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file (config.yaml, configs/config.yaml or LOTERIA_CONFIG_FILE)
//	3. Default values declared in struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern LOTERIA_<SECTION>_<FIELD>:
//
//	LOTERIA_SERVER_PORT=8080
//	LOTERIA_DATASET_FILE_NAME=premio_mayor_loteria_medellin.csv
//	LOTERIA_NARRATIVE_API_KEY=...
//	LOTERIA_NARRATIVE_MODEL=gemini-1.5-flash
//	LOTERIA_LOGGING_LEVEL=debug
//
// # Path Management
//
// GetPaths resolves the data, reports, charts and logs directories against
// a base directory:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	datasetPath := paths.DatasetPath(cfg.Dataset.FileName)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
