package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/benvon/second-brain/internal/database"
	logpkg "github.com/benvon/second-brain/internal/logger"
	"github.com/benvon/second-brain/internal/models"
	"github.com/benvon/second-brain/internal/request"
	"github.com/benvon/second-brain/internal/services/ai"
	"github.com/benvon/second-brain/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Assistant is the AI surface used by the notes and AI handlers
type Assistant interface {
	Summarize(ctx context.Context, preference, text string) (string, error)
	GenerateTags(ctx context.Context, preference, title, content string) ([]string, error)
	Chat(ctx context.Context, preference string, messages []ai.ChatMessage, knowledge []*models.Note) (string, error)
}

// NoteHandler handles knowledge item requests
type NoteHandler struct {
	repo      database.NoteRepositoryInterface
	assistant Assistant
	logger    *zap.Logger
}

// NewNoteHandler creates a new note handler. assistant may be nil, which
// disables the best-effort summary and tags on create.
func NewNoteHandler(repo database.NoteRepositoryInterface, assistant Assistant, logger *zap.Logger) *NoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteHandler{repo: repo, assistant: assistant, logger: logger}
}

// RegisterRoutes registers note routes
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/knowledge", h.ListNotes).Methods("GET")
	r.HandleFunc("/api/knowledge", h.CreateNote).Methods("POST")
	r.HandleFunc("/api/knowledge/{id}", h.GetNote).Methods("GET")
	r.HandleFunc("/api/knowledge/{id}", h.UpdateNote).Methods("PUT")
	r.HandleFunc("/api/knowledge/{id}", h.DeleteNote).Methods("DELETE")
}

// CreateNoteRequest represents the request body for creating a note
type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"required,max=500"`
	Content string   `json:"content" validate:"required,max=100000"`
	Type    string   `json:"type" validate:"omitempty,note_type"`
	Tags    []string `json:"tags" validate:"max=50,dive,max=100"`
	Pinned  bool     `json:"pinned"`
}

// UpdateNoteRequest represents the request body for updating a note
type UpdateNoteRequest struct {
	Title   *string  `json:"title" validate:"omitempty,max=500"`
	Content *string  `json:"content" validate:"omitempty,max=100000"`
	Summary *string  `json:"summary" validate:"omitempty,max=5000"`
	Tags    []string `json:"tags" validate:"omitempty,max=50,dive,max=100"`
	Type    *string  `json:"type" validate:"omitempty,note_type"`
	Pinned  *bool    `json:"pinned"`
}

// ListNotes returns every note, newest first
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list_notes_failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch knowledge")
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

// CreateNote stores a new note. The AI summary and tags are generated on a
// best-effort basis and never block the save.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	req.Content = validation.SanitizeText(req.Content)
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validation.FormatErrors(err))
		return
	}

	note := &models.Note{
		Title:   req.Title,
		Content: req.Content,
		Type:    models.NoteType(req.Type),
		Tags:    validation.SanitizeTags(req.Tags),
		Pinned:  req.Pinned,
	}
	h.enrich(r.Context(), request.ProviderPreference(r), note)

	if err := h.repo.Create(r.Context(), note); err != nil {
		h.logger.Error("create_note_failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to create knowledge")
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

// enrich fills in the summary, and the tags when none were given
func (h *NoteHandler) enrich(ctx context.Context, preference string, note *models.Note) {
	if h.assistant == nil {
		return
	}

	if summary, err := h.assistant.Summarize(ctx, preference, note.Content); err != nil {
		h.logger.Warn("ai_summary_skipped", zap.String("error", logpkg.SanitizeError(err)))
	} else if summary != "" {
		note.Summary = &summary
	}

	if len(note.Tags) > 0 {
		return
	}
	tags, err := h.assistant.GenerateTags(ctx, preference, note.Title, note.Content)
	if err != nil {
		h.logger.Warn("ai_tags_skipped", zap.String("error", logpkg.SanitizeError(err)))
		return
	}
	note.Tags = validation.SanitizeTags(tags)
}

// GetNote returns one note
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	note, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.respondRepoError(w, err, "get_note_failed", "Failed to fetch note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// UpdateNote applies a partial update
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validation.FormatErrors(err))
		return
	}

	var upd models.NoteUpdate
	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondError(w, http.StatusBadRequest, "Title cannot be empty")
			return
		}
		upd.Title = &title
	}
	if req.Content != nil {
		content := validation.SanitizeText(*req.Content)
		if content == "" {
			respondError(w, http.StatusBadRequest, "Content cannot be empty")
			return
		}
		upd.Content = &content
	}
	if req.Summary != nil {
		summary := validation.SanitizeText(*req.Summary)
		upd.Summary = &summary
	}
	if req.Tags != nil {
		upd.Tags = validation.SanitizeTags(req.Tags)
	}
	if req.Type != nil {
		t := models.NoteType(*req.Type)
		upd.Type = &t
	}
	upd.Pinned = req.Pinned

	if upd.IsEmpty() {
		respondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	note, err := h.repo.Update(r.Context(), id, upd)
	if err != nil {
		h.respondRepoError(w, err, "update_note_failed", "Failed to update note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

// DeleteNote removes a note
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.respondRepoError(w, err, "delete_note_failed", "Failed to delete note")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *NoteHandler) respondRepoError(w http.ResponseWriter, err error, event, message string) {
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Note not found")
		return
	}
	h.logger.Error(event, zap.Error(err))
	respondError(w, http.StatusInternalServerError, message)
}
