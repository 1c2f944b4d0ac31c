package calculator

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for bars and pattern ranges.
const DateLayout = "2006-01-02"

// TimestampLayout is the canonical timestamp collectors normalize to.
const TimestampLayout = "2006-01-02T15:04:05Z"

// acceptedLayouts are tried in order; the first one that parses wins.
var acceptedLayouts = []string{
	DateLayout,
	TimestampLayout,
	"2006-01-02T15:04:05",
}

// ParseAnyDate parses s with the accepted layouts and returns the calendar
// date at midnight UTC.
func ParseAnyDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range acceptedLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// DaysBetween returns the whole calendar days from `from` to `to`.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// providerLayouts covers timestamp shapes seen from news providers.
var providerLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
}

// NormalizeTimestamp rewrites provider timestamps into TimestampLayout (UTC).
// Plain dates and input no layout recognizes are returned unchanged.
func NormalizeTimestamp(s string) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err == nil {
		return s
	}
	for _, layout := range providerLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(TimestampLayout)
		}
	}
	return s
}
