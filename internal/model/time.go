package model

import (
	"fmt"
	"time"
)

// TimestampLayout is the fixed-width ISO 8601 form used for stored timestamps.
// All values are UTC with millisecond precision, so string order and time
// order agree.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is the calendar-date portion of TimestampLayout
const DateLayout = "2006-01-02"

// Timestamp normalizes t to UTC at millisecond precision
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// FormatTimestamp renders t in TimestampLayout
func FormatTimestamp(t time.Time) string {
	return Timestamp(t).Format(TimestampLayout)
}

// ParseTimestamp parses a stored timestamp. RFC 3339 input with any offset
// is accepted as well and normalized.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Timestamp(t), nil
}

// DateKey returns the calendar date of t in UTC, discarding time of day
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Elapsed is a duration broken into display units
type Elapsed struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Decompose splits d into days, hours, minutes and seconds.
// Negative durations decompose to zero.
func Decompose(d time.Duration) Elapsed {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return Elapsed{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

// String formats the elapsed time as "1d 02:03:04", dropping zero days
func (e Elapsed) String() string {
	if e.Days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", e.Days, e.Hours, e.Minutes, e.Seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", e.Hours, e.Minutes, e.Seconds)
}

// Humanize describes t relative to now, e.g. "in 5 minutes" or "2 hours ago"
func Humanize(t, now time.Time) string {
	d := t.Sub(now)
	future := d >= 0
	if !future {
		d = -d
	}

	var span string
	switch {
	case d < 45*time.Second:
		span = "a few seconds"
	case d < 90*time.Second:
		span = "a minute"
	case d < 45*time.Minute:
		span = fmt.Sprintf("%d minutes", int((d+30*time.Second)/time.Minute))
	case d < 90*time.Minute:
		span = "an hour"
	case d < 22*time.Hour:
		span = fmt.Sprintf("%d hours", int((d+30*time.Minute)/time.Hour))
	case d < 36*time.Hour:
		span = "a day"
	default:
		span = fmt.Sprintf("%d days", int((d+12*time.Hour)/(24*time.Hour)))
	}

	if future {
		return "in " + span
	}
	return span + " ago"
}
