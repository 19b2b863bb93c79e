// Package dataprocessing loads the Lotería de Medellín draw history and
// computes the statistics the dashboard shows.
//
// # Loading
//
// Loader resolves the dataset file (exact name first, then a
// case-insensitive match), parses it without type assumptions, maps the
// columns to the date, sequence, number and series roles, drops rows that
// fail coercion and derives the calendar and digit features:
//
//	loader := dataprocessing.NewLoader(paths.DataDir, cfg.Dataset.FileName, logger, metrics)
//	table, report, err := loader.Load(ctx)
//
// Every dropped row is counted by reason in the returned LoadReport.
//
// Cache memoizes the table for its owner and exposes Invalidate and Refresh:
//
//	cache := dataprocessing.NewCache(loader, dataprocessing.WithStalenessCheck(true))
//	table, err := cache.Get(ctx)
//
// # Statistics
//
// OutlierBounds, GroupStats, Frequencies, LinearTrend and MissingValues are
// pure functions of their input. ChiSquareUniform, ShapiroWilk and
// Autocorrelation cover the fairness checks of the evaluation page.
//
// # Context summary
//
// Summarizer reduces a table to a bounded text digest for the narrative
// generator. The full table is never included.
package dataprocessing
