package workers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/benvon/second-brain/internal/database"
	logpkg "github.com/benvon/second-brain/internal/logger"
	"github.com/benvon/second-brain/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// MinThemeCount is how many notes a theme needs to count as recurring
	MinThemeCount = 2
	// MaxThemesPerPeriod caps the insights produced for one period
	MaxThemesPerPeriod = 10
	// OldNoteDays is the age after which same-theme notes are resurfaced as related
	OldNoteDays = 30
)

// ErrAnalysisInProgress is returned when a run is requested while another is executing
var ErrAnalysisInProgress = errors.New("pattern analysis already in progress")

// Narrator produces the sentence for a detected theme. It must not fail.
type Narrator interface {
	Narrate(ctx context.Context, theme string, count int, titles []string, period models.Period) string
}

// RunRecorder observes finished runs
type RunRecorder interface {
	ObserveRun(status models.RunStatus, duration time.Duration, insights []models.ThemeInsight)
}

// PatternObserver runs theme analysis over the note corpus and serves its results
type PatternObserver struct {
	notes    database.NoteRepositoryInterface
	runs     database.PatternRunRepositoryInterface
	insights database.PatternInsightRepositoryInterface
	narrator Narrator
	logger   *zap.Logger
	recorder RunRecorder
	tracer   trace.Tracer
	now      func() time.Time
	loc      *time.Location
	running  atomic.Bool
}

// PatternObserverOption configures a PatternObserver
type PatternObserverOption func(*PatternObserver)

// WithClock overrides the time source
func WithClock(now func() time.Time) PatternObserverOption {
	return func(o *PatternObserver) {
		o.now = now
	}
}

// WithLocation sets the zone used for day cutoffs and week boundaries
func WithLocation(loc *time.Location) PatternObserverOption {
	return func(o *PatternObserver) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithRunRecorder sets the metrics sink for finished runs
func WithRunRecorder(r RunRecorder) PatternObserverOption {
	return func(o *PatternObserver) {
		o.recorder = r
	}
}

// WithTracer overrides the tracer used for run spans
func WithTracer(t trace.Tracer) PatternObserverOption {
	return func(o *PatternObserver) {
		o.tracer = t
	}
}

// NewPatternObserver creates a new pattern observer
func NewPatternObserver(
	notes database.NoteRepositoryInterface,
	runs database.PatternRunRepositoryInterface,
	insights database.PatternInsightRepositoryInterface,
	narrator Narrator,
	logger *zap.Logger,
	opts ...PatternObserverOption,
) *PatternObserver {
	o := &PatternObserver{
		notes:    notes,
		runs:     runs,
		insights: insights,
		narrator: narrator,
		logger:   logger,
		tracer:   otel.Tracer("github.com/benvon/second-brain/internal/workers"),
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// themeCandidate is a recurring theme selected for narration
type themeCandidate struct {
	period     models.Period
	group      *ThemeGroup
	relatedIDs []string
}

// RunAnalysis executes one analysis run. The run is not aborted when ctx is
// cancelled. On failure the run is marked failed and the error returned.
func (o *PatternObserver) RunAnalysis(ctx context.Context) (*models.AnalysisResult, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrAnalysisInProgress
	}
	defer o.running.Store(false)

	ctx = context.WithoutCancel(ctx)
	ctx, span := o.tracer.Start(ctx, "pattern_observer.run")
	defer span.End()

	started := time.Now()
	run, err := o.runs.Create(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create run")
		o.observe(models.RunStatusFailed, time.Since(started), nil)
		return nil, fmt.Errorf("failed to create analysis run: %w", err)
	}
	span.SetAttributes(attribute.String("run.id", run.ID))

	o.logger.Info("pattern_analysis_started", zap.String("run_id", run.ID))

	result, err := o.analyze(ctx, run.ID)
	if err != nil {
		if failErr := o.runs.Fail(ctx, run.ID, err.Error()); failErr != nil {
			o.logger.Error("failed_to_mark_run_failed",
				zap.String("run_id", run.ID),
				zap.String("error", logpkg.SanitizeError(failErr)),
			)
			err = errors.Join(err, failErr)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		o.observe(models.RunStatusFailed, time.Since(started), nil)
		o.logger.Error("pattern_analysis_failed",
			zap.String("run_id", run.ID),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("run.total_notes", result.TotalNotes),
		attribute.Int("run.themes_found", result.ThemesFound),
	)
	o.observe(models.RunStatusCompleted, time.Since(started), result.Insights)
	o.logger.Info("pattern_analysis_completed",
		zap.String("run_id", run.ID),
		zap.Int("total_notes", result.TotalNotes),
		zap.Int("themes_found", result.ThemesFound),
		zap.Int("timeline_weeks", len(result.Timeline)),
		zap.Duration("duration", time.Since(started)),
	)
	return result, nil
}

func (o *PatternObserver) analyze(ctx context.Context, runID string) (*models.AnalysisResult, error) {
	notes, err := o.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	result := &models.AnalysisResult{
		RunID:    runID,
		Status:   models.RunStatusCompleted,
		Insights: []models.ThemeInsight{},
		Timeline: []models.TimelineEntry{},
	}
	if len(notes) == 0 {
		if err := o.runs.Complete(ctx, runID, 0, 0); err != nil {
			return nil, fmt.Errorf("failed to complete run: %w", err)
		}
		return result, nil
	}

	candidates := selectThemes(notes, o.now(), o.loc)
	for _, c := range candidates {
		text := o.narrator.Narrate(ctx, c.group.Theme, c.group.Count, c.group.Titles, c.period)
		result.Insights = append(result.Insights, models.ThemeInsight{
			RunID:          runID,
			Theme:          c.group.Theme,
			Count:          c.group.Count,
			Insight:        text,
			RelatedNoteIDs: c.relatedIDs,
			Period:         c.period,
		})
	}
	result.Timeline = BuildTimeline(notes, o.loc)

	if err := o.insights.CreateBatch(ctx, result.Insights); err != nil {
		return nil, fmt.Errorf("failed to persist insights: %w", err)
	}
	if err := o.runs.Complete(ctx, runID, len(notes), len(result.Insights)); err != nil {
		return nil, fmt.Errorf("failed to complete run: %w", err)
	}

	result.TotalNotes = len(notes)
	result.ThemesFound = len(result.Insights)
	return result, nil
}

func (o *PatternObserver) observe(status models.RunStatus, d time.Duration, insights []models.ThemeInsight) {
	if o.recorder != nil {
		o.recorder.ObserveRun(status, d, insights)
	}
}

// selectThemes picks the recurring themes of every period from a newest-first
// snapshot. A theme already recorded from a narrower period is not repeated
// in all_time.
func selectThemes(notes []*models.Note, now time.Time, loc *time.Location) []themeCandidate {
	oldCutoff := daysAgo(now, OldNoteDays, loc)
	recorded := make(map[string]struct{})
	var candidates []themeCandidate

	for _, period := range models.Periods {
		inPeriod := filterByPeriod(notes, period, now, loc)
		if len(inPeriod) == 0 {
			continue
		}

		recurring := make([]*ThemeGroup, 0)
		for _, g := range GroupByTheme(inPeriod).Ordered() {
			if g.Count >= MinThemeCount {
				recurring = append(recurring, g)
			}
		}
		sort.SliceStable(recurring, func(i, j int) bool {
			return recurring[i].Count > recurring[j].Count
		})
		if len(recurring) > MaxThemesPerPeriod {
			recurring = recurring[:MaxThemesPerPeriod]
		}

		for _, g := range recurring {
			if _, seen := recorded[g.Theme]; seen && period == models.PeriodAllTime {
				continue
			}
			if period != models.PeriodAllTime {
				recorded[g.Theme] = struct{}{}
			}
			candidates = append(candidates, themeCandidate{
				period:     period,
				group:      g,
				relatedIDs: relatedNoteIDs(g, notes, oldCutoff),
			})
		}
	}
	return candidates
}

// relatedNoteIDs is the group's members followed by older same-theme notes
// from the whole snapshot, without duplicates
func relatedNoteIDs(g *ThemeGroup, all []*models.Note, oldCutoff time.Time) []string {
	ids := make([]string, 0, len(g.NoteIDs))
	seen := make(map[string]struct{}, len(g.NoteIDs))
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, id := range g.NoteIDs {
		add(id)
	}
	for _, n := range all {
		if n.CreatedAt.Before(oldCutoff) && hasTheme(n, g.Theme) {
			add(n.ID)
		}
	}
	return ids
}

func hasTheme(n *models.Note, theme string) bool {
	for _, t := range n.Tags {
		if normalizeTag(t) == theme {
			return true
		}
	}
	return false
}

// daysAgo returns local midnight of the day n days before now
func daysAgo(now time.Time, n int, loc *time.Location) time.Time {
	d := now.In(loc).AddDate(0, 0, -n)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func filterByPeriod(notes []*models.Note, period models.Period, now time.Time, loc *time.Location) []*models.Note {
	days := period.LookbackDays()
	if days == 0 {
		return notes
	}
	cutoff := daysAgo(now, days, loc)
	filtered := make([]*models.Note, 0, len(notes))
	for _, n := range notes {
		if !n.CreatedAt.Before(cutoff) {
			filtered = append(filtered, n)
		}
	}
	return filtered
}
