// Package contracts holds the types shared by the dashboard server, the CLI
// and API clients.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application
	Version = "1.2.0"

	// ExportSchemaVersion is the version of the enriched table layout
	ExportSchemaVersion = "v1"

	// APIVersion is the version of the JSON API and WebSocket messages
	APIVersion = "v1"
)

// Set with -ldflags "-X loteriadash/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is what `loteriactl version -o json` prints
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	ExportSchema string `json:"export_schema"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		ExportSchema: ExportSchemaVersion,
		APIVersion:   APIVersion,
	}
}

// GetVersionString returns the product name and version
func GetVersionString() string {
	return fmt.Sprintf("Lotería de Medellín Dashboard v%s", Version)
}

// GetFullVersionString appends build details to GetVersionString
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (export %s, api %s, commit %s, built %s, %s %s)",
		GetVersionString(), info.ExportSchema, info.APIVersion,
		info.GitCommit, info.BuildTime, info.GoVersion, info.Platform)
}
