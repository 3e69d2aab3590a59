package workers

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/benvon/second-brain/internal/models"
)

func TestLatestInsights_NoCompletedRun(t *testing.T) {
	t.Parallel()
	f := newObserverFixture(t, nil)

	got, err := f.observer.LatestInsights(context.Background())
	if err != nil {
		t.Fatalf("LatestInsights() error = %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestLatestInsights_Hydrates(t *testing.T) {
	t.Parallel()
	completed := fixedNow
	f := newObserverFixture(t, nil)
	f.runs.latestCompleted = &models.AnalysisRun{
		ID:          "run-9",
		Status:      models.RunStatusCompleted,
		TotalNotes:  4,
		ThemesFound: 2,
		CompletedAt: &completed,
	}
	f.insights.byRun = map[string][]models.ThemeInsight{
		"run-9": {
			{ID: "i1", RunID: "run-9", Theme: "rust", Count: 2, RelatedNoteIDs: []string{"a", "b"}, Period: models.PeriodLast7Days},
			{ID: "i2", RunID: "run-9", Theme: "ai", Count: 2, RelatedNoteIDs: []string{"b", "gone", "c"}, Period: models.PeriodAllTime},
		},
	}

	var requested []string
	f.notes.getSummariesByIDsFunc = func(ctx context.Context, ids []string) ([]models.NoteSummary, error) {
		requested = ids
		// newest first; "gone" was deleted after the run
		return []models.NoteSummary{
			{ID: "c", Title: "C", Tags: []string{"ai"}, CreatedAt: fixedNow},
			{ID: "b", Title: "B", Tags: []string{"rust", "ai"}, CreatedAt: fixedNow.Add(-time.Hour)},
			{ID: "a", Title: "A", Tags: []string{"rust"}, CreatedAt: fixedNow.Add(-2 * time.Hour)},
		}, nil
	}

	got, err := f.observer.LatestInsights(context.Background())
	if err != nil {
		t.Fatalf("LatestInsights() error = %v", err)
	}
	if got.Run.ID != "run-9" {
		t.Errorf("run = %+v", got.Run)
	}
	if want := []string{"a", "b", "gone", "c"}; !reflect.DeepEqual(requested, want) {
		t.Errorf("requested ids = %v, want %v", requested, want)
	}
	if len(got.Insights) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(got.Insights))
	}

	ids := func(ns []models.NoteSummary) []string {
		out := make([]string, 0, len(ns))
		for _, n := range ns {
			out = append(out, n.ID)
		}
		return out
	}
	if want := []string{"b", "a"}; !reflect.DeepEqual(ids(got.Insights[0].RelatedNotes), want) {
		t.Errorf("rust related = %v, want %v", ids(got.Insights[0].RelatedNotes), want)
	}
	if want := []string{"c", "b"}; !reflect.DeepEqual(ids(got.Insights[1].RelatedNotes), want) {
		t.Errorf("ai related = %v, want %v (deleted notes are dropped)", ids(got.Insights[1].RelatedNotes), want)
	}
}

func TestLatestInsights_LookupErrors(t *testing.T) {
	t.Parallel()
	f := newObserverFixture(t, nil)
	f.runs.latestCompletedErr = errors.New("boom")

	if _, err := f.observer.LatestInsights(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()
	f := newObserverFixture(t, nil)

	got, err := f.observer.Status(context.Background())
	if err != nil || got != nil {
		t.Fatalf("Status() = %+v, %v; want nil, nil", got, err)
	}

	msg := "failed to load notes"
	f.runs.latest = &models.AnalysisRun{ID: "run-3", Status: models.RunStatusFailed, Error: &msg}
	got, err = f.observer.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if got.ID != "run-3" || got.Status != models.RunStatusFailed || *got.Error != msg {
		t.Errorf("Status() = %+v", got)
	}
}

func TestTimeline(t *testing.T) {
	t.Parallel()
	f := newObserverFixture(t, []*models.Note{
		note("1", "t", fixedNow, "rust"),
		note("2", "t", daysBefore(14), "go"),
	})

	got, err := f.observer.Timeline(context.Background())
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 weeks, got %+v", got)
	}
	if got[0].Tags["go"] != 1 || got[1].Tags["rust"] != 1 {
		t.Errorf("timeline = %+v", got)
	}
	if len(f.runs.completes) != 0 || f.runs.created != 0 {
		t.Error("Timeline must not create a run")
	}
}
