package model

import (
	"fmt"
	"strings"
	"time"
)

// Article represents a single tracked equipment item. Every physical piece
// has its own row, identified by the 9-digit number printed on its label.
type Article struct {
	ID                   string    `json:"id"`
	Category             string    `json:"category"`
	Label                string    `json:"label"`
	Size                 *string   `json:"size"`
	Notes                *string   `json:"notes"`
	ExpiryDate           *string   `json:"expiryDate"`
	HelmetNextCheck      *string   `json:"helmetNextCheck"`
	HelmetLastCheck      *string   `json:"helmetLastCheck"`
	HelmetManufacturedAt *string   `json:"helmetManufacturedAt"`
	Active               bool      `json:"-"`
	CreatedAt            time.Time `json:"-"`
	UpdatedAt            time.Time `json:"-"`

	// Derived / joined fields (populated on read paths).
	Status          string          `json:"status,omitempty"`
	Location        *Location       `json:"location,omitempty"`
	AssignedAt      *time.Time      `json:"assignedAt,omitempty"`
	Warning         *Warning        `json:"warning"`
	MovementHistory []Movement      `json:"movementHistory,omitempty"`
	NoteEntries     []NoteEntry     `json:"noteEntries,omitempty"`
	Timeline        []TimelineEntry `json:"timeline,omitempty"`
}

// Article statuses.
const (
	StatusInStorage = "in-storage"
	StatusIssued    = "issued"
	StatusWarning   = "warning-active"
)

// Warning kinds.
const (
	WarningCheckDue  = "check-due"
	WarningExpiryDue = "expiry-due"
)

// WarningWindowDays is how far ahead helmet check/expiry dates raise a warning.
const WarningWindowDays = 30

// Warning flags an upcoming or overdue helmet check or expiry. It is derived
// on every read and never persisted.
type Warning struct {
	Kind       string `json:"kind"`
	Date       string `json:"date"`
	WindowDays int    `json:"windowDays"`
}

// NoteEntry is one decoded line of an article's note blob.
type NoteEntry struct {
	ID        string     `json:"id"`
	Timestamp *time.Time `json:"timestamp"`
	Label     *string    `json:"label"`
	Text      string     `json:"text"`
}

// TimelineEntry is one row of the merged movement/note history view.
type TimelineEntry struct {
	Label string `json:"label"`
	Date  string `json:"date"`
	Meta  string `json:"meta,omitempty"`
}

// HelmetCategory is the category keyword that triggers certification rules.
const HelmetCategory = "helm"

// IsHelmetCategory reports whether a category is subject to the helmet
// certification rules. The comparison is case-insensitive.
func IsHelmetCategory(category string) bool {
	return strings.ToLower(category) == HelmetCategory
}

// DateLayout is the canonical calendar-date representation for all stored
// article dates.
const DateLayout = "2006-01-02"

// articleIDLength is the fixed width of normalized article numbers.
const articleIDLength = 9

// NormalizeArticleID strips all non-digit characters, keeps the last nine
// digits, and zero-pads on the left. An input without any digits normalizes
// to the empty string. The function is idempotent.
func NormalizeArticleID(raw string) string {
	var digits []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) > articleIDLength {
		digits = digits[len(digits)-articleIDLength:]
	}
	return fmt.Sprintf("%0*s", articleIDLength, digits)
}

// dateInputLayouts are the accepted date input formats, tried in order.
var dateInputLayouts = []string{
	DateLayout,
	time.RFC3339,
	"02.01.2006",
}

// NormalizeDate validates a date input and returns it in the canonical
// YYYY-MM-DD form. Nil or blank input yields nil (the field is cleared).
// Unparsable input fails with a validation error naming the field.
func NormalizeDate(value *string, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	raw := strings.TrimSpace(*value)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range dateInputLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			normalized := parsed.Format(DateLayout)
			return &normalized, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid date for %s", ErrValidation, field)
}
