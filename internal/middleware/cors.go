package middleware

import (
	"net/http"

	"github.com/benvon/second-brain/internal/request"
	"github.com/rs/cors"
)

// CORS allows browser clients from origins. A "*" entry allows any origin,
// in which case credentials are not allowed.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAny := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAny = true
		}
	}
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: !allowAny,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", request.ProviderHeader, request.RequestIDHeader},
		ExposedHeaders:   []string{request.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	}
	if allowAny {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts).Handler
}
