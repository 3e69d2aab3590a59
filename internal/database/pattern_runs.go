package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/second-brain/internal/models"
	"github.com/google/uuid"
)

const runColumns = `id, status, total_notes, themes_found, error, started_at, completed_at`

// PatternRunRepository handles analysis run records
type PatternRunRepository struct {
	db *DB
}

// NewPatternRunRepository creates a new pattern run repository
func NewPatternRunRepository(db *DB) *PatternRunRepository {
	return &PatternRunRepository{db: db}
}

func scanRun(row rowScanner) (*models.AnalysisRun, error) {
	run := &models.AnalysisRun{}
	var runErr sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.Status,
		&run.TotalNotes,
		&run.ThemesFound,
		&runErr,
		&run.StartedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if runErr.Valid {
		run.Error = &runErr.String
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return run, nil
}

// Create inserts a run in the running state
func (r *PatternRunRepository) Create(ctx context.Context) (*models.AnalysisRun, error) {
	query := `
		INSERT INTO pattern_runs (id, status, started_at)
		VALUES ($1, $2, $3)
		RETURNING ` + runColumns
	run, err := scanRun(r.db.QueryRowContext(ctx, query, uuid.NewString(), models.RunStatusRunning, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern run: %w", err)
	}
	return run, nil
}

// Complete marks a run completed with its counters
func (r *PatternRunRepository) Complete(ctx context.Context, id string, totalNotes, themesFound int) error {
	query := `
		UPDATE pattern_runs
		SET status = $1, total_notes = $2, themes_found = $3, completed_at = $4
		WHERE id = $5
	`
	return r.finalize(ctx, query, models.RunStatusCompleted, totalNotes, themesFound, time.Now(), id)
}

// Fail marks a run failed with the error message
func (r *PatternRunRepository) Fail(ctx context.Context, id string, message string) error {
	query := `
		UPDATE pattern_runs
		SET status = $1, error = $2, completed_at = $3
		WHERE id = $4
	`
	return r.finalize(ctx, query, models.RunStatusFailed, message, time.Now(), id)
}

func (r *PatternRunRepository) finalize(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update pattern run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pattern run: %w", ErrNotFound)
	}
	return nil
}

// LatestCompleted returns the completed run with the newest completion time, or nil if none exists
func (r *PatternRunRepository) LatestCompleted(ctx context.Context) (*models.AnalysisRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM pattern_runs
		WHERE status = $1
		ORDER BY completed_at DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, models.RunStatusCompleted)
}

// Latest returns the most recently started run in any state, or nil if none exists
func (r *PatternRunRepository) Latest(ctx context.Context) (*models.AnalysisRun, error) {
	query := `SELECT ` + runColumns + ` FROM pattern_runs ORDER BY started_at DESC LIMIT 1`
	return r.queryOne(ctx, query)
}

func (r *PatternRunRepository) queryOne(ctx context.Context, query string, args ...any) (*models.AnalysisRun, error) {
	run, err := scanRun(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern run: %w", err)
	}
	return run, nil
}
