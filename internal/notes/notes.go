// Package notes encodes and decodes the append-only note history that lives
// in an article's single free-text notes column. Each entry is one line,
// newest first:
//
//	[24.05.2024 14:30] Strap replaced
//	[12.01.2024 09:15] Small scratch on the left side
//	some older unstamped remark
//
// The bracketed label is the entry timestamp in day.month.year hour:minute
// form. Lines that don't match the pattern are kept as bare entries so that
// pre-existing free-text notes survive round-trips unchanged.
package notes

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"kleiderkammer/internal/model"
)

// StampLayout is the exact timestamp format used for note labels.
const StampLayout = "02.01.2006 15:04"

var entryPattern = regexp.MustCompile(`^\[(.+?)\]\s*(.+)$`)

// Append prepends a new stamped entry above the existing blob. A blank note
// leaves the blob unchanged. The returned string is the new blob value.
func Append(note, existing string, now time.Time) string {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return existing
	}

	entry := fmt.Sprintf("[%s] %s", now.Format(StampLayout), trimmed)

	if strings.TrimSpace(existing) != "" {
		return entry + "\n" + strings.TrimLeft(existing, " \t\n\r")
	}
	return entry
}

// Decode parses a note blob into entries, preserving blob line order
// (newest first). Blank lines are skipped. Bracketed lines whose label
// parses with StampLayout get a timestamp; bracketed lines with any other
// label keep the label but no timestamp; everything else becomes a bare
// entry.
func Decode(blob *string) []model.NoteEntry {
	if blob == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*blob)
	if trimmed == "" {
		return nil
	}

	var entries []model.NoteEntry
	for index, line := range strings.Split(trimmed, "\n") {
		clean := strings.TrimSpace(line)
		if clean == "" {
			continue
		}

		entry := model.NoteEntry{ID: fmt.Sprintf("note-%d", index), Text: clean}
		if match := entryPattern.FindStringSubmatch(clean); match != nil {
			label := match[1]
			entry.Label = &label
			entry.Text = match[2]
			if parsed, err := time.ParseInLocation(StampLayout, label, time.Local); err == nil {
				entry.Timestamp = &parsed
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
