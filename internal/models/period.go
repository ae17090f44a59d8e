package models

import (
	"fmt"
	"time"
)

// Period identifies one calendar month of ingested data, formatted "YYYY-MM".
type Period string

// ParsePeriod validates and returns a Period from its "YYYY-MM" form.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("invalid period %q: %w", s, err)
	}
	return Period(t.Format("2006-01")), nil
}

// PeriodOf returns the Period containing t.
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format("2006-01"))
}

// String returns the "YYYY-MM" form.
func (p Period) String() string { return string(p) }

// DateRange returns the first and last day of the month as "YYYY-MM-DD"
// strings, the format the ads platform expects for since/until parameters.
func (p Period) DateRange() (since, until string, err error) {
	start, err := time.Parse("2006-01", string(p))
	if err != nil {
		return "", "", fmt.Errorf("invalid period %q: %w", p, err)
	}
	end := start.AddDate(0, 1, -1)
	return start.Format("2006-01-02"), end.Format("2006-01-02"), nil
}
