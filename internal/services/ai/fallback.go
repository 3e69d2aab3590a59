package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	logpkg "github.com/benvon/second-brain/internal/logger"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// FallbackChain tries providers in order and returns the first success
type FallbackChain struct {
	providers []Provider
	logger    *zap.Logger
}

// FallbackOption configures a FallbackChain
type FallbackOption func(*FallbackChain)

// WithFallbackLogger sets the logger used to report provider failures
func WithFallbackLogger(logger *zap.Logger) FallbackOption {
	return func(c *FallbackChain) {
		c.logger = logger
	}
}

// NewFallbackChain creates a chain over providers, tried in the given order
func NewFallbackChain(providers []Provider, opts ...FallbackOption) *FallbackChain {
	c := &FallbackChain{
		providers: providers,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Provider
func (c *FallbackChain) Name() string {
	return ProviderAuto
}

// Complete implements Provider. Each provider is tried once; if all fail the
// returned error wraps ErrNoProviderAvailable and every individual failure.
func (c *FallbackChain) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrNoProviderAvailable
	}
	errs := make([]error, 0, len(c.providers))
	for _, p := range c.providers {
		out, err := p.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		c.logger.Warn("ai_provider_failed_trying_next",
			zap.String("provider", p.Name()),
			zap.String("operation", req.Operation),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", ErrNoProviderAvailable, errors.Join(errs...))
}

// Pinger is a provider that can verify it is reachable
type Pinger interface {
	Provider
	Ping(ctx context.Context) error
}

const (
	// DefaultProbeTimeout bounds a single reachability probe
	DefaultProbeTimeout = 2 * time.Second
	// DefaultProbeTTL is how long a probe result is reused
	DefaultProbeTTL = 30 * time.Second
)

// ProbedProvider only forwards calls when its provider answered a recent probe
type ProbedProvider struct {
	provider Pinger
	timeout  time.Duration
	results  *cache.Cache
}

// NewProbedProvider wraps p with a cached reachability check
func NewProbedProvider(p Pinger, ttl time.Duration) *ProbedProvider {
	if ttl <= 0 {
		ttl = DefaultProbeTTL
	}
	return &ProbedProvider{
		provider: p,
		timeout:  DefaultProbeTimeout,
		results:  cache.New(ttl, 2*ttl),
	}
}

// Name implements Provider
func (p *ProbedProvider) Name() string {
	return p.provider.Name()
}

// Available reports whether the wrapped provider is reachable, probing at most once per TTL
func (p *ProbedProvider) Available(ctx context.Context) bool {
	if v, ok := p.results.Get(p.provider.Name()); ok {
		return v.(bool)
	}
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	ok := p.provider.Ping(probeCtx) == nil
	p.results.Set(p.provider.Name(), ok, cache.DefaultExpiration)
	return ok
}

// Complete implements Provider
func (p *ProbedProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if !p.Available(ctx) {
		return "", &ProviderError{Provider: p.provider.Name(), Op: req.Operation, Err: ErrProviderUnavailable}
	}
	return p.provider.Complete(ctx, req)
}

var (
	_ Provider = (*FallbackChain)(nil)
	_ Provider = (*ProbedProvider)(nil)
)
