package ai

import (
	"context"
	"strings"
)

// Provider names as accepted by the X-AI-Provider header
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderAuto   = "auto"
)

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// CompletionRequest is a single text generation call
type CompletionRequest struct {
	// Operation names the call in logs, e.g. "summarize"
	Operation string
	System    string
	Messages  []ChatMessage
}

// Provider is a text generation backend
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Generate runs a single-prompt completion against p
func Generate(ctx context.Context, p Provider, operation, prompt string) (string, error) {
	return p.Complete(ctx, CompletionRequest{
		Operation: operation,
		Messages:  []ChatMessage{{Role: "user", Content: prompt}},
	})
}

// ParsePreference normalizes a provider preference; unknown values mean auto
func ParsePreference(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case ProviderGemini:
		return ProviderGemini
	case ProviderOllama:
		return ProviderOllama
	default:
		return ProviderAuto
	}
}

// Router picks the provider for a request preference
type Router struct {
	cloud Provider
	local Provider
	auto  Provider
}

// NewRouter creates a router. cloud is nil when no API key is configured.
// probedLocal is the local provider gated by its reachability probe and is
// used in auto mode; local is used directly when explicitly requested.
func NewRouter(cloud, local, probedLocal Provider, opts ...FallbackOption) *Router {
	var chain []Provider
	if cloud != nil {
		chain = append(chain, cloud)
	}
	if probedLocal != nil {
		chain = append(chain, probedLocal)
	}
	return &Router{
		cloud: cloud,
		local: local,
		auto:  NewFallbackChain(chain, opts...),
	}
}

// For returns the provider serving preference. An explicit request for the
// cloud provider without an API key falls back to auto mode.
func (r *Router) For(preference string) Provider {
	switch ParsePreference(preference) {
	case ProviderGemini:
		if r.cloud != nil {
			return r.cloud
		}
	case ProviderOllama:
		if r.local != nil {
			return r.local
		}
	}
	return r.auto
}

// Auto returns the cloud-then-local fallback chain
func (r *Router) Auto() Provider {
	return r.auto
}
