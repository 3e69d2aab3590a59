package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/second-brain/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PatternInsightRepository handles theme insights produced by analysis runs
type PatternInsightRepository struct {
	db *DB
}

// NewPatternInsightRepository creates a new pattern insight repository
func NewPatternInsightRepository(db *DB) *PatternInsightRepository {
	return &PatternInsightRepository{db: db}
}

// CreateBatch inserts all insights of a run in a single transaction.
// IDs and creation times are assigned in place; the slice order is stored as position.
func (r *PatternInsightRepository) CreateBatch(ctx context.Context, insights []models.ThemeInsight) error {
	if len(insights) == 0 {
		return nil
	}
	query := `
		INSERT INTO pattern_insights (id, run_id, theme, count, insight, related_note_ids, period, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insight insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for i := range insights {
			in := &insights[i]
			if in.ID == "" {
				in.ID = uuid.NewString()
			}
			in.CreatedAt = now
			related := in.RelatedNoteIDs
			if related == nil {
				related = []string{}
			}
			if _, err := stmt.ExecContext(ctx,
				in.ID,
				in.RunID,
				in.Theme,
				in.Count,
				in.Insight,
				pq.Array(related),
				in.Period,
				i,
				in.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert insight %q: %w", in.Theme, err)
			}
		}
		return nil
	})
}

// ListByRunID returns the insights of a run ordered by count, highest first.
// Equal counts keep the order they were recorded in.
func (r *PatternInsightRepository) ListByRunID(ctx context.Context, runID string) ([]models.ThemeInsight, error) {
	query := `
		SELECT id, run_id, theme, count, insight, related_note_ids, period, created_at
		FROM pattern_insights
		WHERE run_id = $1
		ORDER BY count DESC, position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	insights := make([]models.ThemeInsight, 0)
	for rows.Next() {
		var in models.ThemeInsight
		var related pq.StringArray
		if err := rows.Scan(
			&in.ID,
			&in.RunID,
			&in.Theme,
			&in.Count,
			&in.Insight,
			&related,
			&in.Period,
			&in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		in.RelatedNoteIDs = []string(related)
		if in.RelatedNoteIDs == nil {
			in.RelatedNoteIDs = []string{}
		}
		insights = append(insights, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating insights: %w", err)
	}
	return insights, nil
}
