package middleware

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultRequestTimeout is the default request timeout
	DefaultRequestTimeout = 60 * time.Second
)

// Timeout bounds handler time. Paths starting with one of skipPrefixes, such
// as the analysis trigger, are not bounded.
func Timeout(timeout time.Duration, skipPrefixes ...string) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, `{"error":"Request timed out"}`)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range skipPrefixes {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			bounded.ServeHTTP(w, r)
		})
	}
}
