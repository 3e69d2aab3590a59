package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	logpkg "github.com/benvon/second-brain/internal/logger"
	"github.com/benvon/second-brain/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	// DefaultRateLimit applies to AI and public routes
	DefaultRateLimit = "30-M"

	rateLimitPrefix = "second_brain_limiter"
)

// RateLimiter limits requests per client IP using ulule/limiter. Counters live
// in Redis when configured, otherwise in process memory.
type RateLimiter struct {
	instance *limiter.Limiter
	client   *redis.Client
	backend  string
	logger   *zap.Logger
}

// NewRateLimiter creates a limiter for rate (ulule format, e.g. "30-M"). An
// empty redisURL selects the in-memory store.
func NewRateLimiter(rate, redisURL string, logger *zap.Logger) (*RateLimiter, error) {
	if rate == "" {
		rate = DefaultRateLimit
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	storeOpts := limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		MaxRetry:        limiter.DefaultMaxRetry,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	}
	if redisURL == "" {
		store := memorystore.NewStoreWithOptions(storeOpts)
		return &RateLimiter{instance: limiter.New(store, parsed), backend: "memory", logger: logger}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store, err := redisstore.NewStoreWithOptions(client, storeOpts)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create Redis rate limit store: %w", err)
	}
	return &RateLimiter{instance: limiter.New(store, parsed), client: client, backend: "redis", logger: logger}, nil
}

// Backend names the counter store, "redis" or "memory"
func (l *RateLimiter) Backend() string {
	return l.backend
}

// Middleware returns the rate limiting middleware keyed by client IP
func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	mw := stdlibmw.NewMiddleware(l.instance,
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
		}),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			l.logger.Error("rate_limiter_store_error",
				zap.String("backend", l.backend),
				zap.String("error", logpkg.SanitizeError(err)),
			)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}),
	)
	return mw.Handler
}

// Close releases the Redis connection, if any
func (l *RateLimiter) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
