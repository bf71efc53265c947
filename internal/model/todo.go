package model

import (
	"strings"
	"time"
)

// Todo represents a single tracked item
type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      bool       `json:"status"`
	RemindIn    *time.Time `json:"remindIn"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	InProgress  bool       `json:"inProgress"`
	StartedAt   *time.Time `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt"`
}

// Draft holds the user-editable fields of a todo
type Draft struct {
	Title       string
	Description string
	RemindIn    *time.Time
}

// Normalize trims the text fields and normalizes the reminder timestamp
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.RemindIn != nil {
		r := Timestamp(*d.RemindIn)
		d.RemindIn = &r
	}
	return d
}

// Validate checks that the required fields are present
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description"}
	}
	return nil
}

// Validate checks the record-level invariants of a todo
func (t *Todo) Validate() error {
	if err := (Draft{Title: t.Title, Description: t.Description}).Validate(); err != nil {
		return err
	}
	if t.EndedAt != nil && (t.StartedAt == nil || t.EndedAt.Before(*t.StartedAt)) {
		return &ValidationError{Field: "endedAt", Reason: "must not precede startedAt"}
	}
	if t.InProgress && (t.StartedAt == nil || t.EndedAt != nil) {
		return &ValidationError{Field: "inProgress", Reason: "requires a started, unended session"}
	}
	return nil
}

// HasReminder returns true if a reminder timestamp is set
func (t *Todo) HasReminder() bool {
	return t.RemindIn != nil
}

// SessionRunning returns true while a work session is active
func (t *Todo) SessionRunning() bool {
	return t.InProgress && t.StartedAt != nil && t.EndedAt == nil
}

// SessionEnded returns true if a session was started and has ended
func (t *Todo) SessionEnded() bool {
	return t.StartedAt != nil && t.EndedAt != nil
}

// SessionElapsed returns the session duration.
// A running session is measured against now; an ended one uses the stored
// timestamps only. ok is false if no session was ever started.
func (t *Todo) SessionElapsed(now time.Time) (d time.Duration, ok bool) {
	if t.StartedAt == nil {
		return 0, false
	}
	end := now
	if t.EndedAt != nil {
		end = *t.EndedAt
	}
	d = end.Sub(*t.StartedAt)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Clone returns a deep copy so callers can't alias the pointer fields
func (t Todo) Clone() Todo {
	t.RemindIn = cloneTime(t.RemindIn)
	t.StartedAt = cloneTime(t.StartedAt)
	t.EndedAt = cloneTime(t.EndedAt)
	return t
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
