package models

import (
	"time"
)

// RunStatus is the lifecycle state of an analysis run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Period is the lookback window an insight was computed over
type Period string

const (
	PeriodLast7Days  Period = "last_7_days"
	PeriodLast30Days Period = "last_30_days"
	PeriodAllTime    Period = "all_time"
)

// Periods lists the analysis windows from narrowest to widest.
// A theme recorded for an earlier period outranks the same theme in all_time.
var Periods = []Period{PeriodLast7Days, PeriodLast30Days, PeriodAllTime}

// LookbackDays returns the window size in days, or 0 for all_time
func (p Period) LookbackDays() int {
	switch p {
	case PeriodLast7Days:
		return 7
	case PeriodLast30Days:
		return 30
	default:
		return 0
	}
}

// IsValid reports whether p is a known period
func (p Period) IsValid() bool {
	switch p {
	case PeriodLast7Days, PeriodLast30Days, PeriodAllTime:
		return true
	default:
		return false
	}
}

// AnalysisRun records one execution of the pattern observer
type AnalysisRun struct {
	ID          string     `json:"runId"`
	Status      RunStatus  `json:"status"`
	TotalNotes  int        `json:"totalNotes"`
	ThemesFound int        `json:"themesFound"`
	Error       *string    `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ThemeInsight is a recurring theme detected in one period of a run
type ThemeInsight struct {
	ID             string    `json:"id"`
	RunID          string    `json:"runId"`
	Theme          string    `json:"theme"`
	Count          int       `json:"count"`
	Insight        string    `json:"insight"`
	RelatedNoteIDs []string  `json:"relatedNoteIds"`
	Period         Period    `json:"period"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TimelineEntry aggregates tag counts for one Sunday-started week
type TimelineEntry struct {
	WeekStart  string         `json:"weekStart"`
	WeekEnd    string         `json:"weekEnd"`
	Tags       map[string]int `json:"tags"`
	TotalNotes int            `json:"totalNotes"`
}

// AnalysisResult is what a successful run returns to its caller
type AnalysisResult struct {
	RunID       string          `json:"runId"`
	Status      RunStatus       `json:"status"`
	TotalNotes  int             `json:"totalNotes"`
	ThemesFound int             `json:"themesFound"`
	Insights    []ThemeInsight  `json:"insights"`
	Timeline    []TimelineEntry `json:"timeline"`
}

// InsightWithNotes is a persisted insight with its related notes hydrated
type InsightWithNotes struct {
	ThemeInsight
	RelatedNotes []NoteSummary `json:"relatedNotes"`
}

// LatestInsights is the read model for the most recent completed run
type LatestInsights struct {
	Run      *AnalysisRun       `json:"run"`
	Insights []InsightWithNotes `json:"insights"`
}
