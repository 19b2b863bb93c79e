// Package services implements the business logic layer of the dashboard.
// Handlers and the CLI call into it; it owns the dataset cache and the
// narrative generator and turns their failures into typed application errors.
//
// # Services
//
//	DatasetService    summary, records, statistics, charts, export, reload
//	NarrativeService  rate limited prompts to the narrative generator
//	HealthService     liveness, readiness and version
//
// # Error Handling
//
// Every error leaving a service is an *errors.AppError whose context carries
// the problem extensions the HTTP layer renders, for example a missing dataset:
//
//	{
//	  "type": "/errors/dataset/not-found",
//	  "status": 404,
//	  "searched_path": "data/premio_mayor_loteria_medellin.csv",
//	  "available_files": ["otro.csv"]
//	}
//
// Sentinels (ErrNarrativeUnavailable, ErrNarrativeFailed, ...) stay reachable
// through errors.Is.
//
// # Usage
//
//	cache := dataprocessing.NewCache(loader, dataprocessing.WithStalenessCheck(true))
//	datasets := services.NewDatasetService(cache, summarizer, logger,
//	    services.WithPublisher(hub))
//	narratives := services.NewNarrativeService(generator, datasets, cfg, metrics, logger)
package services
