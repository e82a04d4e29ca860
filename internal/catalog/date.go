package catalog

import (
	"fmt"
	"time"
)

// dateFormat is the store's date notation (YYYYMMDD).
const dateFormat = "20060102"

// Date is a calendar date with no time component, immutable once parsed.
type Date struct {
	t time.Time
}

// ParseDate parses a YYYYMMDD token. It rejects tokens that are not exactly
// eight digits and dates that do not exist on the calendar.
func ParseDate(s string) (Date, error) {
	if len(s) != 8 {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYYMMDD", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Date{}, fmt.Errorf("invalid date %q: expected YYYYMMDD", s)
		}
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC date.
func Today() Date {
	return DateOf(time.Now())
}

// String formats the date as YYYYMMDD.
func (d Date) String() string {
	return d.t.Format(dateFormat)
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Next returns the following calendar date.
func (d Date) Next() Date {
	return Date{t: d.t.AddDate(0, 0, 1)}
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether the two dates are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// DatesBetween returns every date from start to end inclusive, ascending.
// It returns nil when start is after end; validating the range is the
// caller's job.
func DatesBetween(start, end Date) []Date {
	if start.After(end) {
		return nil
	}
	var dates []Date
	for d := start; !d.After(end); d = d.Next() {
		dates = append(dates, d)
	}
	return dates
}

// RecentDates returns the last n dates ending at today, newest first.
func RecentDates(n int) []Date {
	dates := make([]Date, 0, n)
	d := Today()
	for i := 0; i < n; i++ {
		dates = append(dates, d)
		d = Date{t: d.t.AddDate(0, 0, -1)}
	}
	return dates
}
