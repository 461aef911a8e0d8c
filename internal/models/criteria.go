package models

import (
	"fmt"
	"strings"
	"time"
)

// FilterCriteria is the console filter bar state applied to one listing.
// The zero value matches every record.
type FilterCriteria struct {
	// Date restricts results to records whose reference timestamp falls on
	// this calendar day, compared in the server's local zone.
	Date *time.Time
	// Query is a case-insensitive substring matched against the kind's
	// search fields and the resolved actor name.
	Query string
}

// IsZero reports whether no filter is active.
func (c FilterCriteria) IsZero() bool {
	return c.Date == nil && strings.TrimSpace(c.Query) == ""
}

// ParseFilterCriteria builds criteria from raw query parameters. The date is
// interpreted as a calendar day in the server's local zone.
func ParseFilterCriteria(rawDate, rawQuery string) (FilterCriteria, error) {
	criteria := FilterCriteria{Query: rawQuery}
	if rawDate == "" {
		return criteria, nil
	}
	day, err := time.ParseInLocation("2006-01-02", rawDate, time.Local)
	if err != nil {
		return FilterCriteria{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", rawDate)
	}
	criteria.Date = &day
	return criteria, nil
}
