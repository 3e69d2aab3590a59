package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/benvon/second-brain/internal/bootstrap"
	"github.com/benvon/second-brain/internal/config"
	"github.com/benvon/second-brain/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options are the persistent flags shared by every command
type options struct {
	debug   bool
	jsonOut bool
}

// NewRootCmd creates the brainctl root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "brainctl",
		Short:         "Operate the Second Brain pattern observer",
		Long:          "CLI for running the pattern analysis, inspecting its results and seeding sample notes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging, including LLM previews")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newInsightsCmd(opts))
	rootCmd.AddCommand(newTimelineCmd(opts))
	rootCmd.AddCommand(newSeedCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))

	return rootCmd
}

// withApp loads configuration, builds the container and runs fn with it
func withApp(opts *options, fn func(ctx context.Context, app *bootstrap.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := logger.NewDevelopmentLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	ctx := context.Background()
	app, err := bootstrap.NewContainer(ctx, cfg, zapLogger, opts.debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	return fn(ctx, app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
