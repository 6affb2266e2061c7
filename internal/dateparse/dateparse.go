// Package dateparse converts heterogeneous date and datetime text into
// calendar dates.
//
// Layouts are tried in a fixed order and the first successful parse wins.
// US month-first is tried before European day-first, so "03/04/2024" is
// March 4 unless the caller passes a layout that says otherwise.
package dateparse

import (
	"strings"
	"time"
)

// ISODate is the canonical output layout.
const ISODate = "2006-01-02"

// dateLayouts are tried after any caller layout. Unpadded month and day
// verbs accept both "1" and "01".
var dateLayouts = []string{
	"2006-1-2", // ISO
	"1/2/2006", // US
	"2/1/2006", // European
	"2006/1/2", // ISO with slashes
	"1-2-2006", // US with dashes
	"2-1-2006", // European with dashes
}

var datetimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04:05.999999",
}

// ParseDate converts value into a calendar date at UTC midnight. value may be
// a time.Time, a *time.Time or a string; any time-of-day after a "T" or a
// space is discarded before parsing. layout, if non-empty, is a Go reference
// layout tried before the built-in ones. The boolean is false for nil, empty
// or unparseable input.
func ParseDate(value any, layout string) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return Truncate(v), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return Truncate(*v), true
	case string:
		return parseDateString(v, layout)
	}
	return time.Time{}, false
}

// Parse is ParseDate for string input with the built-in layouts only.
func Parse(s string) (time.Time, bool) {
	return parseDateString(s, "")
}

func parseDateString(s, layout string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	} else if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}

	if layout != "" {
		if t, err := time.Parse(layout, s); err == nil {
			return Truncate(t), true
		}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateTime converts value into a timestamp, preserving time of day.
func ParseDateTime(value any, layout string) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if layout != "" {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		for _, l := range datetimeLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Truncate drops the time of day, keeping the wall-clock calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format renders a date in ISO form, or "" for the zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ISODate)
}

// Days returns the whole days from a to b (positive when b is later).
func Days(a, b time.Time) int {
	return int(Truncate(b).Sub(Truncate(a)).Hours() / 24)
}

// DaysBetween parses both values and returns the days from a to b. ok is
// false when either side does not parse.
func DaysBetween(a, b any) (days int, ok bool) {
	da, ok := ParseDate(a, "")
	if !ok {
		return 0, false
	}
	db, ok := ParseDate(b, "")
	if !ok {
		return 0, false
	}
	return Days(da, db), true
}

// IsBefore reports whether a is strictly before b. Unparseable input is false.
func IsBefore(a, b any) bool {
	d, ok := DaysBetween(a, b)
	return ok && d > 0
}

// IsAfter reports whether a is strictly after b. Unparseable input is false.
func IsAfter(a, b any) bool {
	d, ok := DaysBetween(a, b)
	return ok && d < 0
}

// IsSameDay reports whether a and b fall on the same date.
func IsSameDay(a, b any) bool {
	d, ok := DaysBetween(a, b)
	return ok && d == 0
}
