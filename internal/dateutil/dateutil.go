// Package dateutil provides the canonical calendar-date type used as the
// watering record key. A Date carries year/month/day only; every input
// representation (date strings, full timestamps, native time values) collapses
// to the same Date when it names the same calendar day, regardless of the
// timezone it arrived in.
package dateutil

import (
	"fmt"
	"time"
)

// DayFormat is the canonical storage and display rendering of a Date.
const DayFormat = "2006-01-02"

// timestampLayouts are tried, in order, after DayFormat fails. They cover the
// serializations a spreadsheet cell or a JSON payload realistically contains.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.ANSIC,
	"January 2, 2006",
	"01/02/2006",
}

// ParseError reports an input that could not be interpreted as a calendar
// date. Callers normalizing stored rows in bulk skip the offending row;
// callers validating direct input reject the request.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as a calendar date", e.Input)
}

// Date is a timezone-independent calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate normalizes a date string. A plain YYYY-MM-DD string is taken as
// the calendar date itself; a timestamp string keeps only the year/month/day
// as written. The embedded offset is never applied before extracting the
// components, so a non-UTC timestamp cannot roll the date.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DayFormat, s); err == nil {
		return FromTime(t), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return Date{}, &ParseError{Input: s}
}

// FromTime extracts the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// FromCell normalizes a raw store cell, which may hold a native time value or
// a string depending on how the backing store materializes the column. Any
// other cell type is unparseable.
func FromCell(v any) (Date, error) {
	switch c := v.(type) {
	case time.Time:
		return FromTime(c), nil
	case string:
		return ParseDate(c)
	default:
		return Date{}, &ParseError{Input: CellString(v)}
	}
}

// CellString renders a best-effort string for a raw cell on non-filtered
// paths. Native time values render as RFC 3339; nil renders empty.
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case time.Time:
		return c.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", c)
	}
}

// Time returns the instant at UTC midnight of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Time().Format(DayFormat)
}

// Human renders the long form used in notification emails, built from the
// date's own components so it can never shift a day across timezones.
func (d Date) Human() string {
	return d.Time().Format("Monday, January 2, 2006")
}

// AddDays returns the date n calendar days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(o Date) bool {
	return d == o
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}
