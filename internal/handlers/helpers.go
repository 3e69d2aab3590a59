package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/benvon/second-brain/internal/database"
	"github.com/benvon/second-brain/internal/services/ai"
	"github.com/benvon/second-brain/internal/workers"
)

// maxErrorMessageLength bounds error text returned to clients
const maxErrorMessageLength = 200

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends data as a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage keeps client-facing error text short
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondError sends {"error": message}
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: sanitizeErrorMessage(message)})
}

// decodeJSON decodes the request body into dst, writing the error response itself.
// It reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workers.ErrAnalysisInProgress):
		return http.StatusConflict
	case ai.IsRateLimitError(err):
		return http.StatusTooManyRequests
	case errors.Is(err, ai.ErrNoProviderAvailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondAIError writes the response for a failed AI operation
func respondAIError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	switch status {
	case http.StatusTooManyRequests:
		respondError(w, status, "AI provider rate limit reached, try again later")
	case http.StatusServiceUnavailable:
		respondError(w, status, "No AI provider is available")
	default:
		respondError(w, status, err.Error())
	}
}
