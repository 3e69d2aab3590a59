package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benvon/second-brain/internal/database"
	"github.com/benvon/second-brain/internal/models"
)

// mockNoteRepo is a mock implementation of NoteRepositoryInterface.
// Only the snapshot and summary lookups are used by the pattern observer.
type mockNoteRepo struct {
	t *testing.T

	listFunc              func(ctx context.Context) ([]*models.Note, error)
	getSummariesByIDsFunc func(ctx context.Context, ids []string) ([]models.NoteSummary, error)
}

func (m *mockNoteRepo) List(ctx context.Context) ([]*models.Note, error) {
	if m.listFunc == nil {
		m.t.Fatal("List called but not configured in test - mock requires explicit setup")
	}
	return m.listFunc(ctx)
}

func (m *mockNoteRepo) GetSummariesByIDs(ctx context.Context, ids []string) ([]models.NoteSummary, error) {
	if m.getSummariesByIDsFunc == nil {
		m.t.Fatal("GetSummariesByIDs called but not configured in test - mock requires explicit setup")
	}
	return m.getSummariesByIDsFunc(ctx, ids)
}

func (m *mockNoteRepo) Create(ctx context.Context, note *models.Note) error {
	m.t.Fatal("Create should not be called by the pattern observer")
	return nil
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	m.t.Fatal("GetByID should not be called by the pattern observer")
	return nil, nil
}

func (m *mockNoteRepo) ListRecent(ctx context.Context, limit int) ([]*models.Note, error) {
	m.t.Fatal("ListRecent should not be called by the pattern observer")
	return nil, nil
}

func (m *mockNoteRepo) Search(ctx context.Context, q string, limit int) ([]*models.Note, error) {
	m.t.Fatal("Search should not be called by the pattern observer")
	return nil, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error) {
	m.t.Fatal("Update should not be called by the pattern observer")
	return nil, nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id string) error {
	m.t.Fatal("Delete should not be called by the pattern observer")
	return nil
}

func (m *mockNoteRepo) DeleteAll(ctx context.Context) (int64, error) {
	m.t.Fatal("DeleteAll should not be called by the pattern observer")
	return 0, nil
}

var _ database.NoteRepositoryInterface = (*mockNoteRepo)(nil)

type completeCall struct {
	id          string
	totalNotes  int
	themesFound int
}

type failCall struct {
	id      string
	message string
}

// mockRunRepo records run lifecycle transitions
type mockRunRepo struct {
	mu sync.Mutex

	createErr   error
	completeErr error
	failErr     error

	created   int
	completes []completeCall
	fails     []failCall

	latestCompleted    *models.AnalysisRun
	latestCompletedErr error
	latest             *models.AnalysisRun
}

func (m *mockRunRepo) Create(ctx context.Context) (*models.AnalysisRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created++
	return &models.AnalysisRun{
		ID:        "run-" + string(rune('0'+m.created)),
		Status:    models.RunStatusRunning,
		StartedAt: time.Now(),
	}, nil
}

func (m *mockRunRepo) Complete(ctx context.Context, id string, totalNotes, themesFound int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completes = append(m.completes, completeCall{id: id, totalNotes: totalNotes, themesFound: themesFound})
	return m.completeErr
}

func (m *mockRunRepo) Fail(ctx context.Context, id string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fails = append(m.fails, failCall{id: id, message: message})
	return m.failErr
}

func (m *mockRunRepo) LatestCompleted(ctx context.Context) (*models.AnalysisRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestCompleted, m.latestCompletedErr
}

func (m *mockRunRepo) Latest(ctx context.Context) (*models.AnalysisRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, nil
}

var _ database.PatternRunRepositoryInterface = (*mockRunRepo)(nil)

// mockInsightRepo stores insights in memory
type mockInsightRepo struct {
	mu        sync.Mutex
	createErr error
	batches   [][]models.ThemeInsight
	byRun     map[string][]models.ThemeInsight
}

func (m *mockInsightRepo) CreateBatch(ctx context.Context, insights []models.ThemeInsight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	batch := make([]models.ThemeInsight, len(insights))
	copy(batch, insights)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *mockInsightRepo) ListByRunID(ctx context.Context, runID string) ([]models.ThemeInsight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byRun[runID], nil
}

func (m *mockInsightRepo) persisted() []models.ThemeInsight {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.ThemeInsight
	for _, b := range m.batches {
		all = append(all, b...)
	}
	return all
}

var _ database.PatternInsightRepositoryInterface = (*mockInsightRepo)(nil)

type narrateCall struct {
	theme  string
	count  int
	titles []string
	period models.Period
}

// mockNarrator returns a fixed sentence and records its calls
type mockNarrator struct {
	mu    sync.Mutex
	calls []narrateCall
	fn    func(theme string, count int, period models.Period) string
}

func (m *mockNarrator) Narrate(ctx context.Context, theme string, count int, titles []string, period models.Period) string {
	m.mu.Lock()
	m.calls = append(m.calls, narrateCall{theme: theme, count: count, titles: titles, period: period})
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(theme, count, period)
	}
	return "insight about " + theme
}

var _ Narrator = (*mockNarrator)(nil)

// mockRecorder captures observed runs
type mockRecorder struct {
	mu       sync.Mutex
	statuses []models.RunStatus
}

func (m *mockRecorder) ObserveRun(status models.RunStatus, d time.Duration, insights []models.ThemeInsight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

var _ RunRecorder = (*mockRecorder)(nil)

func note(id, title string, createdAt time.Time, tags ...string) *models.Note {
	return &models.Note{
		ID:        id,
		Title:     title,
		Tags:      tags,
		Type:      models.NoteTypeNote,
		CreatedAt: createdAt,
	}
}
