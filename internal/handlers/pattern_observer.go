package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	logpkg "github.com/benvon/second-brain/internal/logger"
	"github.com/benvon/second-brain/internal/models"
	"github.com/benvon/second-brain/internal/workers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PatternService runs the pattern analysis and serves its results
type PatternService interface {
	RunAnalysis(ctx context.Context) (*models.AnalysisResult, error)
	LatestInsights(ctx context.Context) (*models.LatestInsights, error)
	Status(ctx context.Context) (*models.AnalysisRun, error)
	Timeline(ctx context.Context) ([]models.TimelineEntry, error)
}

// PatternObserverHandler exposes the pattern observer over HTTP
type PatternObserverHandler struct {
	service PatternService
	logger  *zap.Logger
}

// NewPatternObserverHandler creates a new pattern observer handler
func NewPatternObserverHandler(service PatternService, logger *zap.Logger) *PatternObserverHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatternObserverHandler{service: service, logger: logger}
}

// RegisterRoutes registers pattern observer routes
func (h *PatternObserverHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/ai/pattern-observer/run", h.Run).Methods("POST")
	r.HandleFunc("/api/ai/pattern-observer/insights", h.Insights).Methods("GET")
	r.HandleFunc("/api/ai/pattern-observer/status", h.Status).Methods("GET")
	r.HandleFunc("/api/ai/pattern-observer/timeline", h.Timeline).Methods("GET")
}

// RunResponse is returned by a manual run
type RunResponse struct {
	Success     bool             `json:"success"`
	RunID       string           `json:"runId"`
	Status      models.RunStatus `json:"status"`
	TotalNotes  int              `json:"totalNotes"`
	ThemesFound int              `json:"themesFound"`
}

// InsightView is one insight with its related notes
type InsightView struct {
	ID           string               `json:"id"`
	Theme        string               `json:"theme"`
	Count        int                  `json:"count"`
	Insight      string               `json:"insight"`
	Period       models.Period        `json:"period"`
	RelatedNotes []models.NoteSummary `json:"relatedNotes"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// InsightsResponse is the latest completed run and its insights
type InsightsResponse struct {
	RunID       string        `json:"runId"`
	CompletedAt *time.Time    `json:"completedAt"`
	TotalNotes  int           `json:"totalNotes"`
	ThemesFound int           `json:"themesFound"`
	Insights    []InsightView `json:"insights"`
}

// StatusResponse describes the most recent run
type StatusResponse struct {
	HasRun      bool             `json:"hasRun"`
	ID          string           `json:"id"`
	Status      models.RunStatus `json:"status"`
	TotalNotes  int              `json:"totalNotes"`
	ThemesFound int              `json:"themesFound"`
	Error       *string          `json:"error"`
	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt *time.Time       `json:"completedAt"`
}

// Run executes one analysis and waits for it to finish
func (h *PatternObserverHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RunAnalysis(r.Context())
	if err != nil {
		if errors.Is(err, workers.ErrAnalysisInProgress) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("pattern_run_request_failed", zap.String("error", logpkg.SanitizeError(err)))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, RunResponse{
		Success:     true,
		RunID:       result.RunID,
		Status:      result.Status,
		TotalNotes:  result.TotalNotes,
		ThemesFound: result.ThemesFound,
	})
}

// Insights returns the latest completed run's insights
func (h *PatternObserverHandler) Insights(w http.ResponseWriter, r *http.Request) {
	latest, err := h.service.LatestInsights(r.Context())
	if err != nil {
		h.logger.Error("pattern_insights_failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch insights")
		return
	}
	if latest == nil || latest.Run == nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"insights": []InsightView{},
			"message":  "No analysis has been completed yet. Run the analyzer first.",
		})
		return
	}

	views := make([]InsightView, 0, len(latest.Insights))
	for _, in := range latest.Insights {
		related := in.RelatedNotes
		if related == nil {
			related = []models.NoteSummary{}
		}
		views = append(views, InsightView{
			ID:           in.ID,
			Theme:        in.Theme,
			Count:        in.Count,
			Insight:      in.Insight,
			Period:       in.Period,
			RelatedNotes: related,
			CreatedAt:    in.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, InsightsResponse{
		RunID:       latest.Run.ID,
		CompletedAt: latest.Run.CompletedAt,
		TotalNotes:  latest.Run.TotalNotes,
		ThemesFound: latest.Run.ThemesFound,
		Insights:    views,
	})
}

// Status returns the most recent run in any state
func (h *PatternObserverHandler) Status(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Status(r.Context())
	if err != nil {
		h.logger.Error("pattern_status_failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch status")
		return
	}
	if run == nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"hasRun":  false,
			"message": "No analysis has been run yet.",
		})
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		HasRun:      true,
		ID:          run.ID,
		Status:      run.Status,
		TotalNotes:  run.TotalNotes,
		ThemesFound: run.ThemesFound,
		Error:       run.Error,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	})
}

// Timeline returns the weekly tag timeline
func (h *PatternObserverHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.service.Timeline(r.Context())
	if err != nil {
		h.logger.Error("pattern_timeline_failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch timeline")
		return
	}
	if timeline == nil {
		timeline = []models.TimelineEntry{}
	}
	respondJSON(w, http.StatusOK, map[string][]models.TimelineEntry{"timeline": timeline})
}
