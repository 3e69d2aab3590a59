package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benvon/second-brain/internal/bootstrap"
	"github.com/benvon/second-brain/internal/config"
	"github.com/benvon/second-brain/internal/logger"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Duration("interval", cfg.PatternInterval),
		zap.Duration("min_gap", cfg.PatternMinGap),
		zap.Duration("startup_delay", cfg.PatternStartupDelay),
	)

	app, err := bootstrap.NewContainer(context.Background(), cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := app.NewScheduler(cfg, zapLogger)
	scheduler.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("worker_shutting_down")
	// Stop waits for an in-flight run to be recorded
	scheduler.Stop()
	zapLogger.Info("worker_stopped")
}
