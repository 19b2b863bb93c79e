// Package shared provides common utilities and test helpers used across the
// dashboard codebase. It holds functionality that doesn't belong to any
// specific domain or architectural layer.
//
// # Structure
//
//   - testutil: captured slog handlers and dataset fixtures for tests
//
// # Usage Guidelines
//
// This package should only contain test utilities used by multiple packages
// and generic helpers with no domain logic. It must not import other
// internal packages so it can be used from any of them.
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    dir := testutil.WriteDataset(t, "sorteos.csv", testutil.SampleDrawsCSV)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
