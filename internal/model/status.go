package model

import "time"

// DeriveStatus computes an article's live status and active warning from its
// location and stored dates. The base status depends only on where the
// article sits; helmets additionally raise a warning when their next check
// or expiry date falls within the next WarningWindowDays days. When both
// dates fall inside the window only the expiry warning is kept.
//
// Non-helmet categories never produce a warning, whatever their date fields
// hold.
func DeriveStatus(a *Article, today time.Time) (string, *Warning) {
	status := StatusInStorage
	if a.Location != nil && a.Location.Type == LocationPerson {
		status = StatusIssued
	}

	if !IsHelmetCategory(a.Category) {
		return status, nil
	}

	window := truncateToDay(today).AddDate(0, 0, WarningWindowDays)
	var warning *Warning

	if date, ok := parseStoredDate(a.HelmetNextCheck); ok && !date.After(window) {
		status = StatusWarning
		warning = &Warning{Kind: WarningCheckDue, Date: *a.HelmetNextCheck, WindowDays: WarningWindowDays}
	}

	if date, ok := parseStoredDate(a.ExpiryDate); ok && !date.After(window) {
		status = StatusWarning
		warning = &Warning{Kind: WarningExpiryDue, Date: *a.ExpiryDate, WindowDays: WarningWindowDays}
	}

	return status, warning
}

func parseStoredDate(value *string) (time.Time, bool) {
	if value == nil || *value == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(DateLayout, *value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
