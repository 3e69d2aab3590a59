package workers

import (
	"strings"
	"time"

	"github.com/benvon/second-brain/internal/models"
)

// ThemeGroup collects the notes sharing one normalized tag
type ThemeGroup struct {
	Theme   string
	Count   int
	NoteIDs []string
	Titles  []string
	Oldest  time.Time
	Newest  time.Time
}

// ThemeGroups is an insertion-ordered mapping from normalized tag to its group
type ThemeGroups struct {
	order []string
	byTag map[string]*ThemeGroup
}

// Get returns the group for a normalized tag
func (g *ThemeGroups) Get(theme string) (*ThemeGroup, bool) {
	group, ok := g.byTag[theme]
	return group, ok
}

// Len returns the number of distinct themes
func (g *ThemeGroups) Len() int {
	return len(g.order)
}

// Ordered returns the groups in first-seen order
func (g *ThemeGroups) Ordered() []*ThemeGroup {
	groups := make([]*ThemeGroup, 0, len(g.order))
	for _, theme := range g.order {
		groups = append(groups, g.byTag[theme])
	}
	return groups
}

// normalizeTag lower-cases and trims a tag; empty results are not themes
func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// GroupByTheme buckets notes by normalized tag. Groups appear in the order
// their theme is first seen while walking notes in input order, and each
// group's members keep input order. A note counts once per theme even when
// several of its raw tags normalize to the same string.
func GroupByTheme(notes []*models.Note) *ThemeGroups {
	groups := &ThemeGroups{byTag: make(map[string]*ThemeGroup)}
	for _, note := range notes {
		seen := make(map[string]struct{}, len(note.Tags))
		for _, raw := range note.Tags {
			theme := normalizeTag(raw)
			if theme == "" {
				continue
			}
			if _, dup := seen[theme]; dup {
				continue
			}
			seen[theme] = struct{}{}

			group, ok := groups.byTag[theme]
			if !ok {
				group = &ThemeGroup{
					Theme:  theme,
					Oldest: note.CreatedAt,
					Newest: note.CreatedAt,
				}
				groups.byTag[theme] = group
				groups.order = append(groups.order, theme)
			}
			group.Count++
			group.NoteIDs = append(group.NoteIDs, note.ID)
			group.Titles = append(group.Titles, note.Title)
			if note.CreatedAt.Before(group.Oldest) {
				group.Oldest = note.CreatedAt
			}
			if note.CreatedAt.After(group.Newest) {
				group.Newest = note.CreatedAt
			}
		}
	}
	return groups
}
