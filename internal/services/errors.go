package services

import (
	"errors"
	"fmt"

	"loteriadash/internal/charts"
	"loteriadash/internal/dataprocessing"
	apperrors "loteriadash/internal/errors"
	"loteriadash/internal/exporter"
	"loteriadash/internal/files"
	"loteriadash/internal/narrative"
	"loteriadash/pkg/contracts/domain"
)

// Service errors
var (
	// Dataset errors
	ErrDatasetUnavailable = errors.New("dataset unavailable")

	// Narrative errors
	ErrNarrativeUnavailable = errors.New("narrative generator unavailable")
	ErrNarrativeFailed      = errors.New("narrative generation failed")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)

// datasetError converts loader and statistics failures into AppErrors the
// HTTP layer renders as problems. Context entries become problem extensions.
func datasetError(err error) error {
	if err == nil {
		return nil
	}

	var notFound *files.NotFoundError
	if errors.As(err, &notFound) {
		available := notFound.Available
		if available == nil {
			available = []string{}
		}
		return apperrors.NewNotFoundError("dataset", err).
			WithContext("problem_type", apperrors.TypeDatasetNotFound).
			WithContext("searched_path", notFound.SearchedPath).
			WithContext("available_files", available)
	}

	var schema *dataprocessing.SchemaError
	if errors.As(err, &schema) {
		return apperrors.NewParsingError("dataset is missing required columns", err).
			WithContext("missing_columns", schema.Missing).
			WithContext("columns_found", schema.Seen)
	}

	switch {
	case errors.Is(err, dataprocessing.ErrEmptyDataset),
		errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return apperrors.NewParsingError("dataset could not be read", err)
	case errors.Is(err, charts.ErrUnknownChart):
		return apperrors.NewNotFoundError("chart", err).
			WithContext("problem_type", apperrors.TypeChartNotFound).
			WithContext("available_charts", charts.Names())
	case errors.Is(err, domain.ErrUnknownColumn), errors.Is(err, ErrInvalidInput),
		errors.Is(err, exporter.ErrUnknownFormat):
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid request", err)
	case errors.Is(err, domain.ErrInsufficientData):
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "not enough rows for this statistic", err)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewStorageError("failed to load dataset", fmt.Errorf("%w: %w", ErrDatasetUnavailable, err))
}

// narrativeError maps generator failures. Nothing here panics; every
// failure ends up as a visible message.
func narrativeError(err error) error {
	switch {
	case errors.Is(err, narrative.ErrNotConfigured):
		return apperrors.NewUnavailableError("narrative generator is not configured",
			fmt.Errorf("%w: %w", ErrNarrativeUnavailable, err)).
			WithContext("problem_type", apperrors.TypeNarrative)
	case errors.Is(err, ErrNarrativeUnavailable):
		return apperrors.NewUnavailableError("narrative generator is busy, try again shortly", err).
			WithContext("problem_type", apperrors.TypeNarrative).
			WithContext("retry_after", 1)
	case errors.Is(err, narrative.ErrBlocked):
		return apperrors.NewExternalError("the model declined to answer",
			fmt.Errorf("%w: %w", ErrNarrativeFailed, err)).
			WithContext("problem_type", apperrors.TypeNarrative)
	default:
		return apperrors.NewExternalError("narrative generation failed",
			fmt.Errorf("%w: %w", ErrNarrativeFailed, err)).
			WithContext("problem_type", apperrors.TypeNarrative)
	}
}
