// Package timeline merges an article's recent ledger rows and decoded notes
// into one chronologically ordered history view.
package timeline

import (
	"fmt"
	"sort"
	"time"

	"kleiderkammer/internal/model"
)

// History limits: the view shows at most the 3 newest movements and the 10
// newest notes.
const (
	maxMovements = 3
	maxNotes     = 10
)

const displayLayout = "02.01.2006 15:04"

type internalEntry struct {
	model.TimelineEntry
	sortValue int64
}

// Build produces the merged movement/note timeline for an article, newest
// first. Entries with unparsable timestamps sort last (ties keep insertion
// order). When there is nothing to show at all, a single synthetic
// "last moved" entry is derived from the article's current location and
// last activity timestamp.
func Build(article *model.Article) []model.TimelineEntry {
	var entries []internalEntry

	movements := article.MovementHistory
	if len(movements) > maxMovements {
		movements = movements[:maxMovements]
	}
	for _, movement := range movements {
		entries = append(entries, internalEntry{
			TimelineEntry: model.TimelineEntry{
				Label: movementLabel(movement),
				Date:  formatTime(&movement.PerformedAt),
				Meta:  movementMeta(movement),
			},
			sortValue: sortValue(&movement.PerformedAt),
		})
	}

	noteEntries := article.NoteEntries
	if len(noteEntries) > maxNotes {
		noteEntries = noteEntries[:maxNotes]
	}
	for index, note := range noteEntries {
		label := "Note"
		if note.Label != nil {
			label = fmt.Sprintf("Note (%s)", *note.Label)
		}
		date := formatTime(note.Timestamp)
		if note.Timestamp == nil {
			if note.Label != nil {
				date = *note.Label
			} else {
				date = fmt.Sprintf("Note %d", index+1)
			}
		}
		entries = append(entries, internalEntry{
			TimelineEntry: model.TimelineEntry{Label: label, Date: date, Meta: note.Text},
			sortValue:     sortValue(note.Timestamp),
		})
	}

	if len(entries) == 0 {
		entries = append(entries, internalEntry{
			TimelineEntry: model.TimelineEntry{
				Label: "Last moved",
				Date:  formatTime(article.AssignedAt),
				Meta:  currentLocationMeta(article),
			},
			sortValue: sortValue(article.AssignedAt),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sortValue > entries[j].sortValue
	})

	result := make([]model.TimelineEntry, len(entries))
	for i, entry := range entries {
		result[i] = entry.TimelineEntry
	}
	return result
}

func movementLabel(movement model.Movement) string {
	switch movement.Action {
	case model.ActionTransferToPerson:
		if movement.To != nil && movement.To.Type == model.LocationPerson {
			return "Issued to " + summarizeLocation(movement.To)
		}
		return "Issued"
	case model.ActionTransferToStorage:
		if movement.From != nil && movement.From.Type == model.LocationPerson {
			return "Returned by " + summarizeLocation(movement.From)
		}
		return "Returned to storage"
	case model.ActionCreate:
		return "Article created"
	case model.ActionRetire:
		return "Article retired"
	case model.ActionCertification:
		return "Check recorded"
	default:
		return "Updated"
	}
}

func movementMeta(movement model.Movement) string {
	from := ""
	if movement.From != nil {
		from = summarizeLocation(movement.From)
	}
	to := ""
	if movement.To != nil {
		to = summarizeLocation(movement.To)
	}

	switch {
	case from != "" && to != "":
		return fmt.Sprintf("%s to %s", from, to)
	case to != "":
		return "To " + to
	case from != "":
		return "From " + from
	default:
		return ""
	}
}

func summarizeLocation(location *model.Location) string {
	if location == nil {
		return "unknown"
	}
	if location.Name != "" {
		return location.Name
	}
	if location.Type == model.LocationPerson {
		return "person"
	}
	return "storage"
}

func currentLocationMeta(article *model.Article) string {
	if article.Location != nil && article.Location.Type == model.LocationPerson {
		return "Currently with " + summarizeLocation(article.Location)
	}
	return "Currently in storage"
}

func sortValue(t *time.Time) int64 {
	if t == nil || t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(displayLayout)
}
