package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"loteriadash/internal/files"
)

// Validation failures, matched with errors.Is
var (
	ErrNotExist       = errors.New("path does not exist")
	ErrNotDirectory   = errors.New("not a directory")
	ErrNotFile        = errors.New("not a regular file")
	ErrUnsupported    = errors.New("unsupported dataset format")
	ErrEmptyFile      = errors.New("file is empty")
	ErrTemporaryFile  = errors.New("temporary office file")
	ErrNotWritable    = errors.New("directory is not writable")
	ErrNoDatasetFiles = errors.New("no dataset files")
)

// FileValidator runs the filesystem checks done before the loader touches a
// dataset, so the CLI can report a clear reason instead of a parse error.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateDataDirectory checks that dir exists and holds at least one
// supported dataset file. It returns the names found.
func (v *FileValidator) ValidateDataDirectory(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Data directory does not exist", slog.String("directory", dir))
		return nil, fmt.Errorf("%w: %s", ErrNotExist, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Data path is not a directory", slog.String("path", dir))
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	found, err := files.NewDiscovery("").FindDatasets(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	names := make([]string, 0, len(found))
	for _, f := range found {
		names = append(names, f.Name)
	}
	if len(names) == 0 {
		v.logger.Warn("No dataset files found",
			slog.String("directory", dir),
			slog.Any("extensions", files.SupportedExtensions))
		return nil, fmt.Errorf("%w in %s", ErrNoDatasetFiles, dir)
	}

	v.logger.Info("Data directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", len(names)))
	return names, nil
}

// ValidateDatasetFile checks that path is a readable, non-empty file in a
// format the loader understands
func (v *FileValidator) ValidateDatasetFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Dataset file does not exist", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotFile, path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary office file", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrTemporaryFile, base)
	}
	if !files.IsSupported(base) {
		v.logger.Error("Dataset file has an unsupported extension",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(base)))
		return fmt.Errorf("%w: %s (want one of %s)", ErrUnsupported, base, strings.Join(files.SupportedExtensions, ", "))
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("Dataset file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable, creating it
// if needed
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
