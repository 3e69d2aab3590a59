package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/second-brain/internal/database"
	logpkg "github.com/benvon/second-brain/internal/logger"
	"github.com/benvon/second-brain/internal/models"
	"github.com/benvon/second-brain/internal/request"
	"github.com/benvon/second-brain/internal/services/ai"
	"github.com/benvon/second-brain/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AIHandler handles the summarize, auto-tag and chat endpoints
type AIHandler struct {
	notes     database.NoteRepositoryInterface
	assistant Assistant
	logger    *zap.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(notes database.NoteRepositoryInterface, assistant Assistant, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{notes: notes, assistant: assistant, logger: logger}
}

// RegisterRoutes registers AI routes
func (h *AIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/ai/summarize", h.Summarize).Methods("POST")
	r.HandleFunc("/api/ai/auto-tag", h.AutoTag).Methods("POST")
	r.HandleFunc("/api/ai/chat", h.Chat).Methods("POST")
}

// SummarizeRequest represents the request body for summarizing content
type SummarizeRequest struct {
	ItemID  string `json:"itemId" validate:"omitempty,max=128"`
	Content string `json:"content"`
}

// AutoTagRequest represents the request body for generating tags
type AutoTagRequest struct {
	ItemID  string `json:"itemId" validate:"omitempty,max=128"`
	Title   string `json:"title" validate:"max=500"`
	Content string `json:"content"`
}

// ChatRequest represents the request body for a chat turn
type ChatRequest struct {
	Messages []ai.ChatMessage `json:"messages" validate:"required,min=1,max=100,dive"`
}

// Summarize returns a one-sentence summary and stores it on the note when itemId is set
func (h *AIHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "Content required")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validation.FormatErrors(err))
		return
	}

	summary, err := h.assistant.Summarize(r.Context(), request.ProviderPreference(r), req.Content)
	if err != nil {
		h.logAIError("summarize", err)
		respondAIError(w, err)
		return
	}

	if req.ItemID != "" {
		if _, err := h.notes.Update(r.Context(), req.ItemID, models.NoteUpdate{Summary: &summary}); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Note not found")
				return
			}
			h.logger.Error("store_summary_failed", zap.String("note_id", logpkg.SanitizeID(req.ItemID)), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Failed to store summary")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// AutoTag generates tags and merges them into the note when itemId names an existing note
func (h *AIHandler) AutoTag(w http.ResponseWriter, r *http.Request) {
	var req AutoTagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "Content required")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validation.FormatErrors(err))
		return
	}
	title := validation.SanitizeText(req.Title)
	if title == "" {
		title = "Untitled"
	}

	tags, err := h.assistant.GenerateTags(r.Context(), request.ProviderPreference(r), title, req.Content)
	if err != nil {
		h.logAIError("auto_tag", err)
		respondAIError(w, err)
		return
	}
	tags = validation.SanitizeTags(tags)

	if req.ItemID != "" {
		if err := h.mergeTags(r, req.ItemID, tags); err != nil {
			h.logger.Error("store_tags_failed", zap.String("note_id", logpkg.SanitizeID(req.ItemID)), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Failed to store tags")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

// mergeTags adds tags to an existing note. A missing note is not an error.
func (h *AIHandler) mergeTags(r *http.Request, id string, tags []string) error {
	note, err := h.notes.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = h.notes.Update(r.Context(), id, models.NoteUpdate{Tags: ai.MergeTags(note.Tags, tags)})
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	return err
}

// Chat answers the conversation using the newest notes as context
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Messages required: "+validation.FormatErrors(err))
		return
	}

	knowledge, err := h.notes.ListRecent(r.Context(), ai.ChatContextSize)
	if err != nil {
		h.logger.Error("chat_context_failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load knowledge")
		return
	}

	response, err := h.assistant.Chat(r.Context(), request.ProviderPreference(r), req.Messages, knowledge)
	if err != nil {
		h.logAIError("chat", err)
		respondAIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (h *AIHandler) logAIError(op string, err error) {
	h.logger.Warn("ai_request_failed",
		zap.String("operation", op),
		zap.Bool("rate_limited", ai.IsRateLimitError(err)),
		zap.String("error", logpkg.SanitizeError(err)),
	)
}
