package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loteriadash/internal/services"
)

func newAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the AI assistant a question about the draws",
		Example: `  loteriactl ask "¿Qué números salen más en diciembre?"
  loteriactl ask cuál es la serie más frecuente`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			question := strings.TrimSpace(strings.Join(args, " "))
			if len(question) < 3 {
				return fmt.Errorf("question is too short")
			}
			n, err := e.narrative.Ask(cmd.Context(), question)
			if err != nil {
				return err
			}
			return printNarrative(cmd, e, n)
		},
	}
}

// newNarrativeCommand builds report, insights and suggestions
func newNarrativeCommand(kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			var generate func(context.Context) (services.Narrative, error)
			switch kind {
			case "report":
				generate = e.narrative.Report
			case "insights":
				generate = e.narrative.Insights
			default:
				generate = e.narrative.Suggestions
			}
			n, err := generate(cmd.Context())
			if err != nil {
				return err
			}
			return printNarrative(cmd, e, n)
		},
	}
}

func printNarrative(cmd *cobra.Command, e *env, n services.Narrative) error {
	if e.out.json() {
		return e.out.writeJSON(n)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(n.Text))
	return err
}
