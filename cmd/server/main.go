package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benvon/second-brain/internal/bootstrap"
	"github.com/benvon/second-brain/internal/config"
	"github.com/benvon/second-brain/internal/handlers"
	"github.com/benvon/second-brain/internal/logger"
	"github.com/benvon/second-brain/internal/middleware"
	"github.com/benvon/second-brain/internal/telemetry"
	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// runRoute waits for a full analysis and is exempt from the request timeout
const runRoute = "/api/ai/pattern-observer/run"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	noScheduler := flag.Bool("no-scheduler", false, "Do not run the pattern scheduler in this process")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.Strings("allowed_origins", cfg.AllowedOrigins()),
		zap.Bool("gemini_configured", cfg.GeminiAPIKey != ""),
		zap.String("ollama_host", logger.SanitizeString(cfg.OllamaHost, logger.MaxPathLength)),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	var tracerProvider *sdktrace.TracerProvider
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
				ServiceName: telemetry.ServiceName,
				Endpoint:    cfg.OTELEndpoint,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := telemetry.Shutdown(shutdownCtx, tracerProvider); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	app, err := bootstrap.NewContainer(context.Background(), cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit, cfg.RedisURL, zapLogger)
	if err != nil && cfg.RedisURL != "" {
		zapLogger.Warn("redis_rate_limiter_unavailable_using_memory_store", zap.Error(err))
		rateLimiter, err = middleware.NewRateLimiter(cfg.RateLimit, "", zapLogger)
	}
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}
	defer func() {
		if err := rateLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rate_limiter", zap.Error(err))
		}
	}()
	zapLogger.Info("rate_limiter_ready",
		zap.String("backend", rateLimiter.Backend()),
		zap.String("rate", cfg.RateLimit),
	)

	// Handlers
	noteHandler := handlers.NewNoteHandler(app.Notes, app.Assistant, zapLogger)
	aiHandler := handlers.NewAIHandler(app.Notes, app.Assistant, zapLogger)
	patternHandler := handlers.NewPatternObserverHandler(app.Observer, zapLogger)
	publicHandler := handlers.NewPublicHandler(app.Notes, zapLogger)
	healthChecker := handlers.NewHealthChecker(app.DB)
	openAPIHandler := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"))

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first registered is outermost
	if tracerProvider != nil {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(60*time.Second, runRoute))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	if cfg.MetricsEnabled {
		r.Handle("/metrics", app.Metrics.Handler()).Methods("GET")
	}
	openAPIHandler.RegisterRoutes(r)
	noteHandler.RegisterRoutes(r)
	patternHandler.RegisterRoutes(r)

	aiRouter := r.PathPrefix("/api/ai").Subrouter()
	aiRouter.Use(rateLimiter.Middleware())
	aiHandler.RegisterRoutes(aiRouter)

	publicRouter := r.PathPrefix("/api/public").Subrouter()
	publicRouter.Use(rateLimiter.Middleware())
	publicHandler.RegisterRoutes(publicRouter)

	// Preflight requests are answered by the CORS middleware; this keeps
	// mux from returning 405 for routes without an OPTIONS method.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	scheduler := app.NewScheduler(cfg, zapLogger)
	if cfg.PatternSchedulerEnabled && !*noScheduler {
		scheduler.Start(schedCtx)
	} else {
		zapLogger.Info("pattern_scheduler_disabled")
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	scheduler.Stop()

	zapLogger.Info("server_exited")
}
