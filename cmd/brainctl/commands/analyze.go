package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/benvon/second-brain/internal/bootstrap"
	"github.com/benvon/second-brain/internal/models"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run the pattern analysis once",
		Long:  "Run one pattern analysis over every note and print the recurring themes it found",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.Container) error {
				result, err := app.Observer.RunAnalysis(ctx)
				if err != nil {
					return fmt.Errorf("analysis failed: %w", err)
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), result)
				}
				writeResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

func writeResult(w io.Writer, result *models.AnalysisResult) {
	fmt.Fprintf(w, "Run %s %s\n", result.RunID, result.Status)
	fmt.Fprintf(w, "  Notes analyzed: %d\n", result.TotalNotes)
	fmt.Fprintf(w, "  Themes found:   %d\n", result.ThemesFound)
	for _, in := range result.Insights {
		fmt.Fprintf(w, "  - [%s] %s (%d): %s\n", in.Period, in.Theme, in.Count, in.Insight)
	}
}
