// Package cli provides the loteriactl command-line interface. Commands run
// the same services as the dashboard against the local dataset and print
// tables or JSON.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loteriadash/internal/config"
	"loteriadash/internal/narrative"
	"loteriadash/pkg/contracts"
)

// envKey stores the service environment in the command context
type envKey struct{}

type rootFlags struct {
	configFile string
	dataDir    string
	fileName   string
	output     string
	verbose    bool
}

type options struct {
	generator narrative.Generator
}

// Option customizes the root command
type Option func(*options)

// WithGenerator replaces the configured narrative generator
func WithGenerator(g narrative.Generator) Option {
	return func(o *options) { o.generator = g }
}

// NewRootCmd creates and returns the root command
func NewRootCmd(opts ...Option) *cobra.Command {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "loteriactl",
		Short: "Explore the Lotería de Medellín draw history",
		Long: `loteriactl loads the premio mayor draw history and prints summaries,
statistics, exports, charts and AI narratives without starting the dashboard.`,
		Version: config.AppVersion,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}
			e, err := newEnv(cmd, flags, o)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "directory holding the dataset")
	rootCmd.PersistentFlags().StringVar(&flags.fileName, "file", "", "dataset file name")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "table", "output format (table|json)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log to stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newSummaryCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newChartsCommand())
	rootCmd.AddCommand(newAskCommand())
	rootCmd.AddCommand(newNarrativeCommand("report", "Write an analytical report of the draw history"))
	rootCmd.AddCommand(newNarrativeCommand("insights", "List notable observations about the draws"))
	rootCmd.AddCommand(newNarrativeCommand("suggestions", "Suggest further analyses"))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func getEnv(cmd *cobra.Command) *env {
	e, _ := cmd.Context().Value(envKey{}).(*env)
	return e
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("output")
			if format == "json" {
				return printer{w: cmd.OutOrStdout(), format: format}.writeJSON(contracts.GetVersionInfo())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
			return err
		},
	}
}
