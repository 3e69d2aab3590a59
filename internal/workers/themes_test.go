package workers

import (
	"reflect"
	"testing"
	"time"

	"github.com/benvon/second-brain/internal/models"
)

func TestGroupByTheme_NormalizesTags(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)
	notes := []*models.Note{
		note("1", "Agents", now, "AI"),
		note("2", "Transformers", now.Add(-time.Hour), " ai "),
		note("3", "Prompting", now.Add(-2*time.Hour), "ai"),
	}

	groups := GroupByTheme(notes)

	if groups.Len() != 1 {
		t.Fatalf("expected one theme, got %d", groups.Len())
	}
	g, ok := groups.Get("ai")
	if !ok {
		t.Fatal("expected theme \"ai\"")
	}
	if g.Count != 3 {
		t.Errorf("Count = %d, want 3", g.Count)
	}
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(g.NoteIDs, want) {
		t.Errorf("NoteIDs = %v, want %v", g.NoteIDs, want)
	}
	if want := []string{"Agents", "Transformers", "Prompting"}; !reflect.DeepEqual(g.Titles, want) {
		t.Errorf("Titles = %v, want %v", g.Titles, want)
	}
	if !g.Oldest.Equal(now.Add(-2*time.Hour)) || !g.Newest.Equal(now) {
		t.Errorf("Oldest/Newest = %v/%v, want %v/%v", g.Oldest, g.Newest, now.Add(-2*time.Hour), now)
	}
}

func TestGroupByTheme_Cases(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		notes      []*models.Note
		wantOrder  []string
		wantCounts map[string]int
	}{
		{
			name:       "no notes",
			notes:      nil,
			wantOrder:  []string{},
			wantCounts: map[string]int{},
		},
		{
			name: "empty and blank tags are skipped",
			notes: []*models.Note{
				note("1", "a", at, "", "   ", "go"),
			},
			wantOrder:  []string{"go"},
			wantCounts: map[string]int{"go": 1},
		},
		{
			name: "first seen order is kept",
			notes: []*models.Note{
				note("1", "a", at, "rust", "go"),
				note("2", "b", at, "design"),
				note("3", "c", at, "go"),
			},
			wantOrder:  []string{"rust", "go", "design"},
			wantCounts: map[string]int{"rust": 1, "go": 2, "design": 1},
		},
		{
			name: "a note counts once per theme",
			notes: []*models.Note{
				note("1", "a", at, "AI", "ai"),
			},
			wantOrder:  []string{"ai"},
			wantCounts: map[string]int{"ai": 1},
		},
		{
			name: "untagged notes contribute nothing",
			notes: []*models.Note{
				note("1", "a", at),
				note("2", "b", at, "health"),
			},
			wantOrder:  []string{"health"},
			wantCounts: map[string]int{"health": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			groups := GroupByTheme(tt.notes)
			order := make([]string, 0)
			for _, g := range groups.Ordered() {
				order = append(order, g.Theme)
				if g.Count != tt.wantCounts[g.Theme] {
					t.Errorf("theme %q count = %d, want %d", g.Theme, g.Count, tt.wantCounts[g.Theme])
				}
			}
			if !reflect.DeepEqual(order, tt.wantOrder) {
				t.Errorf("order = %v, want %v", order, tt.wantOrder)
			}
		})
	}
}

func TestNormalizeTag_Idempotent(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"AI", " ai ", "Machine Learning\t", "rust"} {
		once := normalizeTag(in)
		if twice := normalizeTag(once); twice != once {
			t.Errorf("normalizeTag not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
