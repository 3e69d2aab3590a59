package database

import (
	"context"

	"github.com/benvon/second-brain/internal/models"
)

// NoteRepositoryInterface defines the interface for note repository operations
// This interface enables better testability by allowing mock implementations
type NoteRepositoryInterface interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context) ([]*models.Note, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Note, error)
	Search(ctx context.Context, q string, limit int) ([]*models.Note, error)
	GetSummariesByIDs(ctx context.Context, ids []string) ([]models.NoteSummary, error)
	Update(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// PatternRunRepositoryInterface defines the interface for analysis run records
type PatternRunRepositoryInterface interface {
	Create(ctx context.Context) (*models.AnalysisRun, error)
	Complete(ctx context.Context, id string, totalNotes, themesFound int) error
	Fail(ctx context.Context, id string, message string) error
	LatestCompleted(ctx context.Context) (*models.AnalysisRun, error)
	Latest(ctx context.Context) (*models.AnalysisRun, error)
}

// PatternInsightRepositoryInterface defines the interface for theme insight records
type PatternInsightRepositoryInterface interface {
	CreateBatch(ctx context.Context, insights []models.ThemeInsight) error
	ListByRunID(ctx context.Context, runID string) ([]models.ThemeInsight, error)
}

// Ensure concrete types implement the interfaces
var (
	_ NoteRepositoryInterface           = (*NoteRepository)(nil)
	_ PatternRunRepositoryInterface     = (*PatternRunRepository)(nil)
	_ PatternInsightRepositoryInterface = (*PatternInsightRepository)(nil)
)
