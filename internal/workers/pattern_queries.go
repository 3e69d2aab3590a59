package workers

import (
	"context"
	"fmt"

	"github.com/benvon/second-brain/internal/models"
)

// LatestInsights returns the insights of the most recently completed run with
// their related notes hydrated, or nil when no run has completed yet.
func (o *PatternObserver) LatestInsights(ctx context.Context) (*models.LatestInsights, error) {
	run, err := o.runs.LatestCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest completed run: %w", err)
	}
	if run == nil {
		return nil, nil
	}

	insights, err := o.insights.ListByRunID(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}

	var ids []string
	wanted := make(map[string]struct{})
	for _, in := range insights {
		for _, id := range in.RelatedNoteIDs {
			if _, ok := wanted[id]; !ok {
				wanted[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	summaries, err := o.notes.GetSummariesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load related notes: %w", err)
	}

	out := &models.LatestInsights{
		Run:      run,
		Insights: make([]models.InsightWithNotes, 0, len(insights)),
	}
	for _, in := range insights {
		members := make(map[string]struct{}, len(in.RelatedNoteIDs))
		for _, id := range in.RelatedNoteIDs {
			members[id] = struct{}{}
		}
		related := make([]models.NoteSummary, 0, len(in.RelatedNoteIDs))
		// summaries are already newest first
		for _, s := range summaries {
			if _, ok := members[s.ID]; ok {
				related = append(related, s)
			}
		}
		out.Insights = append(out.Insights, models.InsightWithNotes{
			ThemeInsight: in,
			RelatedNotes: related,
		})
	}
	return out, nil
}

// Status returns the most recently started run in any state, or nil if none exists
func (o *PatternObserver) Status(ctx context.Context) (*models.AnalysisRun, error) {
	run, err := o.runs.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	return run, nil
}

// Timeline computes the weekly tag timeline over the current notes
func (o *PatternObserver) Timeline(ctx context.Context) ([]models.TimelineEntry, error) {
	notes, err := o.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return BuildTimeline(notes, o.loc), nil
}
