package workers

import (
	"sort"
	"time"

	"github.com/benvon/second-brain/internal/models"
)

const dateLayout = "2006-01-02"

// weekStart returns Sunday 00:00 of the week containing t, in loc
func weekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// BuildTimeline aggregates normalized tag counts per Sunday-started week.
// Weeks without notes are omitted and entries are sorted by week start.
// Notes without tags still count toward the week's total.
func BuildTimeline(notes []*models.Note, loc *time.Location) []models.TimelineEntry {
	if loc == nil {
		loc = time.Local
	}

	sorted := make([]*models.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	byWeek := make(map[string]*models.TimelineEntry)
	for _, note := range sorted {
		start := weekStart(note.CreatedAt, loc)
		key := start.Format(dateLayout)
		entry, ok := byWeek[key]
		if !ok {
			entry = &models.TimelineEntry{
				WeekStart: key,
				WeekEnd:   start.AddDate(0, 0, 6).Format(dateLayout),
				Tags:      make(map[string]int),
			}
			byWeek[key] = entry
		}
		entry.TotalNotes++
		seen := make(map[string]struct{}, len(note.Tags))
		for _, raw := range note.Tags {
			tag := normalizeTag(raw)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			entry.Tags[tag]++
		}
	}

	timeline := make([]models.TimelineEntry, 0, len(byWeek))
	for _, entry := range byWeek {
		timeline = append(timeline, *entry)
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].WeekStart < timeline[j].WeekStart
	})
	return timeline
}
