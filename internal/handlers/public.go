package handlers

import (
	"net/http"
	"strings"

	"github.com/benvon/second-brain/internal/database"
	"github.com/benvon/second-brain/internal/models"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// PublicQueryLimit caps the results of a public brain query
	PublicQueryLimit = 5
	maxQueryLength   = 200
)

// PublicHandler serves the unauthenticated brain query
type PublicHandler struct {
	notes  database.NoteRepositoryInterface
	logger *zap.Logger
}

// NewPublicHandler creates a new public query handler
func NewPublicHandler(notes database.NoteRepositoryInterface, logger *zap.Logger) *PublicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicHandler{notes: notes, logger: logger}
}

// RegisterRoutes registers public routes
func (h *PublicHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/public/brain/query", h.Query).Methods("GET")
}

// QueryResponse is the public query result
type QueryResponse struct {
	Query   string         `json:"query"`
	Results []*models.Note `json:"results"`
	Count   int            `json:"count"`
}

// Query searches note titles and content for q
func (h *PublicHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, `Query parameter "q" required`)
		return
	}
	if len(q) > maxQueryLength {
		respondError(w, http.StatusBadRequest, `Query parameter "q" is too long`)
		return
	}

	results, err := h.notes.Search(r.Context(), q, PublicQueryLimit)
	if err != nil {
		h.logger.Error("public_query_failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Query failed")
		return
	}
	if results == nil {
		results = []*models.Note{}
	}

	respondJSON(w, http.StatusOK, QueryResponse{Query: q, Results: results, Count: len(results)})
}
