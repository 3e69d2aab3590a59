package request

import (
	"net/http"
	"strings"

	"github.com/benvon/second-brain/internal/services/ai"
	"github.com/google/uuid"
)

const (
	// ProviderHeader selects the AI provider for a request
	ProviderHeader = "X-AI-Provider"
	// RequestIDHeader carries the request correlation id
	RequestIDHeader = "X-Request-ID"
)

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// ProviderPreference returns the normalized X-AI-Provider value, defaulting to auto.
func ProviderPreference(r *http.Request) string {
	return ai.ParsePreference(r.Header.Get(ProviderHeader))
}

// RequestID returns the caller's X-Request-ID or a new one when absent or oversized.
func RequestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(RequestIDHeader)); id != "" && len(id) <= 128 {
		return id
	}
	return uuid.NewString()
}
