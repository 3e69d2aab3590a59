package models

import (
	"time"
)

// NoteType classifies a knowledge item
type NoteType string

const (
	NoteTypeNote    NoteType = "note"
	NoteTypeLink    NoteType = "link"
	NoteTypeInsight NoteType = "insight"
)

// Note represents a knowledge item in the second brain
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	Tags      []string  `json:"tags"`
	Type      NoteType  `json:"type"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteSummary is the projection of a note used when hydrating related notes
type NoteSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	Type      NoteType  `json:"type"`
}

// NoteUpdate holds the optional fields of a partial note update.
// Nil fields are left unchanged.
type NoteUpdate struct {
	Title   *string
	Content *string
	Summary *string
	Tags    []string
	Type    *NoteType
	Pinned  *bool
}

// IsEmpty reports whether the update would change nothing
func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Summary == nil && u.Tags == nil && u.Type == nil && u.Pinned == nil
}

// IsValid reports whether t is a known note type
func (t NoteType) IsValid() bool {
	switch t {
	case NoteTypeNote, NoteTypeLink, NoteTypeInsight:
		return true
	default:
		return false
	}
}

// Summarize returns the related-note projection of n
func (n *Note) Summarize() NoteSummary {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteSummary{
		ID:        n.ID,
		Title:     n.Title,
		Tags:      tags,
		CreatedAt: n.CreatedAt,
		Type:      n.Type,
	}
}
