package model

import (
	"fmt"
	"strings"
	"time"
)

// ParseRemind reads a reminder instant typed by the user. Accepted forms:
//
//	+15m, 1h30m          relative to now
//	15:04                today, or tomorrow if already past
//	tomorrow 09:00       tomorrow at the given time
//	2006-01-02T15:04     local date and time
//	RFC 3339             any offset
//
// The result is normalized with Timestamp.
func ParseRemind(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty reminder")
	}
	loc := now.Location()

	if d, err := time.ParseDuration(strings.TrimPrefix(s, "+")); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("reminder offset must be positive: %s", s)
		}
		return Timestamp(now.Add(d)), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Timestamp(t), nil
	}

	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Timestamp(t), nil
		}
	}

	lower := strings.ToLower(s)
	day := 0
	for _, prefix := range []string{"tomorrow ", "tom "} {
		if strings.HasPrefix(lower, prefix) {
			day = 1
			lower = strings.TrimSpace(strings.TrimPrefix(lower, prefix))
			break
		}
	}

	clock, err := time.Parse("15:04", lower)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized reminder %q", s)
	}
	t := time.Date(now.Year(), now.Month(), now.Day()+day, clock.Hour(), clock.Minute(), 0, 0, loc)
	if day == 0 && !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return Timestamp(t), nil
}
