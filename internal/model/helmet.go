package model

import "time"

// Helmet certification intervals.
const (
	helmetLifetimeYears      = 10
	helmetCheckIntervalYears = 2
)

// HelmetExpiry computes the expiry date forced onto every helmet: the
// manufacture date plus ten years. Whenever an article's category is (or
// becomes) the helmet category, this value overrides any client-supplied
// expiry date.
func HelmetExpiry(manufacturedAt string) (string, error) {
	parsed, err := time.Parse(DateLayout, manufacturedAt)
	if err != nil {
		return "", err
	}
	return parsed.AddDate(helmetLifetimeYears, 0, 0).Format(DateLayout), nil
}

// HelmetCheckDates returns the last-check and next-check dates recorded when
// a helmet check is completed. performedAt defaults to today when nil and
// must otherwise be in canonical form.
func HelmetCheckDates(performedAt *string, today time.Time) (last, next string, err error) {
	performed := truncateToDay(today)
	if performedAt != nil && *performedAt != "" {
		performed, err = time.Parse(DateLayout, *performedAt)
		if err != nil {
			return "", "", err
		}
	}
	last = performed.Format(DateLayout)
	next = performed.AddDate(helmetCheckIntervalYears, 0, 0).Format(DateLayout)
	return last, next, nil
}
