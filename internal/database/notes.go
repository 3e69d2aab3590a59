package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/second-brain/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const noteColumns = `id, title, content, summary, tags, type, pinned, created_at, updated_at`

// NoteRepository handles note database operations
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	note := &models.Note{}
	var summary sql.NullString
	var tags pq.StringArray
	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&summary,
		&tags,
		&note.Type,
		&note.Pinned,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if summary.Valid {
		note.Summary = &summary.String
	}
	note.Tags = []string(tags)
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

// Create inserts a new note, assigning an id, default type and timestamps when absent
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Type == "" {
		note.Type = models.NoteTypeNote
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	createdAt := note.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO notes (id, title, content, summary, tags, type, pinned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.Title,
		note.Content,
		note.Summary,
		pq.Array(note.Tags),
		note.Type,
		note.Pinned,
		createdAt,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	note, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// List returns every note, newest first
func (r *NoteRepository) List(ctx context.Context) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes ORDER BY created_at DESC`
	return r.queryNotes(ctx, query)
}

// ListRecent returns at most limit notes, newest first
func (r *NoteRepository) ListRecent(ctx context.Context, limit int) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes ORDER BY created_at DESC LIMIT $1`
	return r.queryNotes(ctx, query, limit)
}

// Search returns notes whose title or content contains q, case-insensitively
func (r *NoteRepository) Search(ctx context.Context, q string, limit int) ([]*models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE title ILIKE $1 ESCAPE '\' OR content ILIKE $1 ESCAPE '\'
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.queryNotes(ctx, query, "%"+escapeLike(q)+"%", limit)
}

// GetSummariesByIDs returns the related-note projection for ids, newest first.
// Unknown ids are skipped.
func (r *NoteRepository) GetSummariesByIDs(ctx context.Context, ids []string) ([]models.NoteSummary, error) {
	if len(ids) == 0 {
		return []models.NoteSummary{}, nil
	}
	query := `
		SELECT id, title, tags, created_at, type
		FROM notes
		WHERE id = ANY($1)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query note summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.NoteSummary, 0, len(ids))
	for rows.Next() {
		var s models.NoteSummary
		var tags pq.StringArray
		if err := rows.Scan(&s.ID, &s.Title, &tags, &s.CreatedAt, &s.Type); err != nil {
			return nil, fmt.Errorf("failed to scan note summary: %w", err)
		}
		s.Tags = []string(tags)
		if s.Tags == nil {
			s.Tags = []string{}
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note summaries: %w", err)
	}
	return summaries, nil
}

// Update applies the non-nil fields of upd and returns the updated note
func (r *NoteRepository) Update(ctx context.Context, id string, upd models.NoteUpdate) (*models.Note, error) {
	if upd.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	if upd.Summary != nil {
		add("summary", *upd.Summary)
	}
	if upd.Tags != nil {
		add("tags", pq.Array(upd.Tags))
	}
	if upd.Type != nil {
		add("type", string(*upd.Type))
	}
	if upd.Pinned != nil {
		add("pinned", *upd.Pinned)
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE notes SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), noteColumns)

	note, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// Delete removes a note by ID
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAll removes every note and returns how many were deleted
func (r *NoteRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notes: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}

func (r *NoteRepository) queryNotes(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*models.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
