package handlers

import (
	"context"
	"testing"

	"github.com/benvon/second-brain/internal/models"
	"github.com/benvon/second-brain/internal/services/ai"
)

// mockNoteRepository is a mock implementation of NoteRepositoryInterface
type mockNoteRepository struct {
	t *testing.T

	createFunc            func(ctx context.Context, note *models.Note) error
	getByIDFunc           func(ctx context.Context, id string) (*models.Note, error)
	listFunc              func(ctx context.Context) ([]*models.Note, error)
	listRecentFunc        func(ctx context.Context, limit int) ([]*models.Note, error)
	searchFunc            func(ctx context.Context, q string, limit int) ([]*models.Note, error)
	getSummariesByIDsFunc func(ctx context.Context, ids []string) ([]models.NoteSummary, error)
	updateFunc            func(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error)
	deleteFunc            func(ctx context.Context, id string) error
	deleteAllFunc         func(ctx context.Context) (int64, error)
}

func (m *mockNoteRepository) Create(ctx context.Context, note *models.Note) error {
	if m.createFunc == nil {
		m.t.Fatal("Create called but not configured in test - mock requires explicit setup")
	}
	return m.createFunc(ctx, note)
}

func (m *mockNoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	if m.getByIDFunc == nil {
		m.t.Fatal("GetByID called but not configured in test - mock requires explicit setup")
	}
	return m.getByIDFunc(ctx, id)
}

func (m *mockNoteRepository) List(ctx context.Context) ([]*models.Note, error) {
	if m.listFunc == nil {
		m.t.Fatal("List called but not configured in test - mock requires explicit setup")
	}
	return m.listFunc(ctx)
}

func (m *mockNoteRepository) ListRecent(ctx context.Context, limit int) ([]*models.Note, error) {
	if m.listRecentFunc == nil {
		m.t.Fatal("ListRecent called but not configured in test - mock requires explicit setup")
	}
	return m.listRecentFunc(ctx, limit)
}

func (m *mockNoteRepository) Search(ctx context.Context, q string, limit int) ([]*models.Note, error) {
	if m.searchFunc == nil {
		m.t.Fatal("Search called but not configured in test - mock requires explicit setup")
	}
	return m.searchFunc(ctx, q, limit)
}

func (m *mockNoteRepository) GetSummariesByIDs(ctx context.Context, ids []string) ([]models.NoteSummary, error) {
	if m.getSummariesByIDsFunc == nil {
		m.t.Fatal("GetSummariesByIDs called but not configured in test - mock requires explicit setup")
	}
	return m.getSummariesByIDsFunc(ctx, ids)
}

func (m *mockNoteRepository) Update(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error) {
	if m.updateFunc == nil {
		m.t.Fatal("Update called but not configured in test - mock requires explicit setup")
	}
	return m.updateFunc(ctx, id, upd)
}

func (m *mockNoteRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc == nil {
		m.t.Fatal("Delete called but not configured in test - mock requires explicit setup")
	}
	return m.deleteFunc(ctx, id)
}

func (m *mockNoteRepository) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAllFunc == nil {
		m.t.Fatal("DeleteAll called but not configured in test - mock requires explicit setup")
	}
	return m.deleteAllFunc(ctx)
}

// mockAssistant is a mock implementation of Assistant
type mockAssistant struct {
	t *testing.T

	summarizeFunc    func(ctx context.Context, preference, text string) (string, error)
	generateTagsFunc func(ctx context.Context, preference, title, content string) ([]string, error)
	chatFunc         func(ctx context.Context, preference string, messages []ai.ChatMessage, knowledge []*models.Note) (string, error)
}

func (m *mockAssistant) Summarize(ctx context.Context, preference, text string) (string, error) {
	if m.summarizeFunc == nil {
		m.t.Fatal("Summarize called but not configured in test - mock requires explicit setup")
	}
	return m.summarizeFunc(ctx, preference, text)
}

func (m *mockAssistant) GenerateTags(ctx context.Context, preference, title, content string) ([]string, error) {
	if m.generateTagsFunc == nil {
		m.t.Fatal("GenerateTags called but not configured in test - mock requires explicit setup")
	}
	return m.generateTagsFunc(ctx, preference, title, content)
}

func (m *mockAssistant) Chat(ctx context.Context, preference string, messages []ai.ChatMessage, knowledge []*models.Note) (string, error) {
	if m.chatFunc == nil {
		m.t.Fatal("Chat called but not configured in test - mock requires explicit setup")
	}
	return m.chatFunc(ctx, preference, messages, knowledge)
}

// mockPatternService is a mock implementation of PatternService
type mockPatternService struct {
	t *testing.T

	runAnalysisFunc    func(ctx context.Context) (*models.AnalysisResult, error)
	latestInsightsFunc func(ctx context.Context) (*models.LatestInsights, error)
	statusFunc         func(ctx context.Context) (*models.AnalysisRun, error)
	timelineFunc       func(ctx context.Context) ([]models.TimelineEntry, error)
}

func (m *mockPatternService) RunAnalysis(ctx context.Context) (*models.AnalysisResult, error) {
	if m.runAnalysisFunc == nil {
		m.t.Fatal("RunAnalysis called but not configured in test - mock requires explicit setup")
	}
	return m.runAnalysisFunc(ctx)
}

func (m *mockPatternService) LatestInsights(ctx context.Context) (*models.LatestInsights, error) {
	if m.latestInsightsFunc == nil {
		m.t.Fatal("LatestInsights called but not configured in test - mock requires explicit setup")
	}
	return m.latestInsightsFunc(ctx)
}

func (m *mockPatternService) Status(ctx context.Context) (*models.AnalysisRun, error) {
	if m.statusFunc == nil {
		m.t.Fatal("Status called but not configured in test - mock requires explicit setup")
	}
	return m.statusFunc(ctx)
}

func (m *mockPatternService) Timeline(ctx context.Context) ([]models.TimelineEntry, error) {
	if m.timelineFunc == nil {
		m.t.Fatal("Timeline called but not configured in test - mock requires explicit setup")
	}
	return m.timelineFunc(ctx)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}
