package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"loteriadash/internal/charts"
	"loteriadash/internal/config"
	"loteriadash/internal/dataprocessing"
	"loteriadash/internal/exporter"
	"loteriadash/internal/files"
	"loteriadash/internal/infrastructure"
	"loteriadash/internal/narrative"
	"loteriadash/internal/services"
	"loteriadash/internal/validation"
)

// env holds the services one command invocation works with
type env struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	out       printer
	dataset   *services.DatasetService
	narrative *services.NarrativeService
	validator *validation.FileValidator
}

func loadConfig(file string) (*config.Config, error) {
	if file != "" {
		return config.LoadFrom(file)
	}
	return config.Load()
}

func newEnv(cmd *cobra.Command, flags *rootFlags, o options) (*env, error) {
	if flags.output != "table" && flags.output != "json" {
		return nil, fmt.Errorf("unknown output format %q (want table or json)", flags.output)
	}

	cfg, err := loadConfig(flags.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.dataDir != "" {
		cfg.Paths.DataDir = flags.dataDir
	}
	if flags.fileName != "" {
		cfg.Dataset.FileName = flags.fileName
	}

	// Commands print results on stdout, so logs stay on stderr and quiet by default
	var logOut io.Writer = io.Discard
	level := slog.LevelWarn
	if flags.verbose {
		logOut = cmd.ErrOrStderr()
		level = slog.LevelDebug
	}
	logger := infrastructure.NewLogger(logOut, "text", &slog.HandlerOptions{Level: level})

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, err
	}

	loader := dataprocessing.NewLoader(paths.DataDir, cfg.Dataset.FileName, logger, nil)
	cache := dataprocessing.NewCache(loader)
	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
		MaxBytes: cfg.Narrative.MaxContextBytes,
	})
	dataset := services.NewDatasetService(cache, summarizer, logger,
		services.WithExporter(exporter.NewExporter(files.NewManager(paths, logger), logger)),
		services.WithCharts(charts.DefaultOptions(), paths.ChartsDir))

	generator := o.generator
	if generator == nil && cfg.Narrative.Enabled() {
		gemini, err := narrative.NewGemini(cmd.Context(), narrative.GeminiConfigFrom(cfg.Narrative), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize narrative generator: %w", err)
		}
		generator = gemini
	}
	// The CLI makes one call per run, so the limiter is left open
	narr := services.NewNarrativeService(generator, dataset, services.NarrativeConfig{
		Model: cfg.Narrative.Model,
	}, nil, logger)

	return &env{
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
		out:       printer{w: cmd.OutOrStdout(), format: flags.output},
		dataset:   dataset,
		narrative: narr,
		validator: validation.NewFileValidator(logger),
	}, nil
}
