package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrNoProviderAvailable is returned when no configured provider could serve a request
	ErrNoProviderAvailable = errors.New("no AI provider available: set GEMINI_API_KEY or run Ollama locally")
	// ErrProviderUnavailable indicates a provider failed its reachability probe
	ErrProviderUnavailable = errors.New("provider unreachable")
	// ErrEmptyResponse indicates the provider answered with no usable text
	ErrEmptyResponse = errors.New("empty response from provider")
)

// ProviderError wraps a failure from a single provider call
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (status %d): %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// newProviderError builds a ProviderError, lifting the HTTP status out of SDK errors
func newProviderError(provider, op string, err error) *ProviderError {
	pe := &ProviderError{Provider: provider, Op: op, Err: err}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.StatusCode
	}
	return pe
}

// IsRateLimitError reports whether any provider in err's tree was rate limited
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if hasStatus(err, http.StatusTooManyRequests) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests")
}

// IsAuthError reports whether any provider in err's tree rejected its credentials
func IsAuthError(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

// hasStatus walks err, including joined errors, looking for a ProviderError with code
func hasStatus(err error, code int) bool {
	if err == nil {
		return false
	}
	if pe, ok := err.(*ProviderError); ok && pe.StatusCode == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if hasStatus(e, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return hasStatus(u.Unwrap(), code)
	}
	return false
}
