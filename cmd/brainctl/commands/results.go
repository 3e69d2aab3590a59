package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/benvon/second-brain/internal/bootstrap"
	"github.com/benvon/second-brain/internal/models"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the most recent analysis run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.Container) error {
				run, err := app.Observer.Status(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), run)
				}
				writeStatus(cmd.OutOrStdout(), run)
				return nil
			})
		},
	}
}

func newInsightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show the insights of the latest completed run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.Container) error {
				latest, err := app.Observer.LatestInsights(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), latest)
				}
				writeInsights(cmd.OutOrStdout(), latest)
				return nil
			})
		},
	}
}

func newTimelineCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show the weekly tag timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, app *bootstrap.Container) error {
				timeline, err := app.Observer.Timeline(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), timeline)
				}
				writeTimeline(cmd.OutOrStdout(), timeline)
				return nil
			})
		},
	}
}

func writeStatus(w io.Writer, run *models.AnalysisRun) {
	if run == nil {
		fmt.Fprintln(w, "No analysis has been run yet.")
		return
	}
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  Status:       %s\n", run.Status)
	fmt.Fprintf(w, "  Started:      %s\n", run.StartedAt.Format(time.RFC3339))
	if run.CompletedAt != nil {
		fmt.Fprintf(w, "  Finished:     %s\n", run.CompletedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "  Notes:        %d\n", run.TotalNotes)
	fmt.Fprintf(w, "  Themes found: %d\n", run.ThemesFound)
	if run.Error != nil {
		fmt.Fprintf(w, "  Error:        %s\n", *run.Error)
	}
}

func writeInsights(w io.Writer, latest *models.LatestInsights) {
	if latest == nil || latest.Run == nil {
		fmt.Fprintln(w, "No analysis has been completed yet. Run the analyzer first.")
		return
	}
	fmt.Fprintf(w, "Run %s: %d themes across %d notes\n", latest.Run.ID, latest.Run.ThemesFound, latest.Run.TotalNotes)
	for _, in := range latest.Insights {
		fmt.Fprintf(w, "\n%s [%s, %d notes]\n  %s\n", in.Theme, in.Period, in.Count, in.Insight)
		for _, n := range in.RelatedNotes {
			fmt.Fprintf(w, "    - %s (%s)\n", n.Title, n.CreatedAt.Format("2006-01-02"))
		}
	}
}

func writeTimeline(w io.Writer, timeline []models.TimelineEntry) {
	if len(timeline) == 0 {
		fmt.Fprintln(w, "No notes yet.")
		return
	}
	for _, e := range timeline {
		tags := make([]string, 0, len(e.Tags))
		for tag, n := range e.Tags {
			tags = append(tags, fmt.Sprintf("%s=%d", tag, n))
		}
		sort.Strings(tags)
		fmt.Fprintf(w, "%s..%s  %3d notes  %s\n", e.WeekStart, e.WeekEnd, e.TotalNotes, strings.Join(tags, " "))
	}
}
