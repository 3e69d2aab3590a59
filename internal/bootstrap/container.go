package bootstrap

import (
	"context"
	"fmt"

	"github.com/benvon/second-brain/internal/config"
	"github.com/benvon/second-brain/internal/database"
	"github.com/benvon/second-brain/internal/services/ai"
	"github.com/benvon/second-brain/internal/telemetry"
	"github.com/benvon/second-brain/internal/workers"
	"go.uber.org/zap"
)

// Container holds the process-wide dependencies shared by the binaries
type Container struct {
	DB        *database.DB
	Notes     *database.NoteRepository
	Runs      *database.PatternRunRepository
	Insights  *database.PatternInsightRepository
	Router    *ai.Router
	Assistant *ai.Assistant
	Metrics   *telemetry.Metrics
	Observer  *workers.PatternObserver
}

// NewContainer connects to the database, applies the schema and wires the
// AI providers and the pattern observer.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger, debugMode bool) (*Container, error) {
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	c := &Container{
		DB:       db,
		Notes:    database.NewNoteRepository(db),
		Runs:     database.NewPatternRunRepository(db),
		Insights: database.NewPatternInsightRepository(db),
		Metrics:  metrics,
	}
	c.Router = NewAIRouter(cfg, logger, debugMode)
	c.Assistant = ai.NewAssistant(c.Router)

	narrator := ai.NewInsightNarrator(c.Router.Auto(), logger, metrics)
	c.Observer = workers.NewPatternObserver(c.Notes, c.Runs, c.Insights, narrator, logger,
		workers.WithRunRecorder(metrics),
	)
	return c, nil
}

// NewAIRouter builds the provider router. The cloud provider is only
// configured when an API key is present.
func NewAIRouter(cfg *config.Config, logger *zap.Logger, debugMode bool) *ai.Router {
	var cloud ai.Provider
	if cfg.GeminiAPIKey != "" {
		cloud = ai.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.AITimeout, logger, debugMode)
	} else {
		logger.Info("gemini_not_configured_using_local_provider_only")
	}

	local := ai.NewOllamaProvider(cfg.OllamaHost, cfg.OllamaModel, cfg.AITimeout, logger, debugMode)
	probed := ai.NewProbedProvider(local, ai.DefaultProbeTTL)

	return ai.NewRouter(cloud, local, probed, ai.WithFallbackLogger(logger))
}

// NewScheduler builds the pattern scheduler from configuration
func (c *Container) NewScheduler(cfg *config.Config, logger *zap.Logger) *workers.Scheduler {
	return workers.NewScheduler(c.Observer, c.Runs, workers.SchedulerConfig{
		Interval:     cfg.PatternInterval,
		MinGap:       cfg.PatternMinGap,
		StartupDelay: cfg.PatternStartupDelay,
	}, logger)
}

// Close releases the database pool
func (c *Container) Close() error {
	return c.DB.Close()
}
