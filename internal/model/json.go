package model

import (
	"encoding/json"
	"time"
)

// todoJSON is the wire form of Todo. Timestamps use TimestampLayout so the
// exported document matches the store byte for byte.
type todoJSON struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      bool    `json:"status"`
	RemindIn    *string `json:"remindIn"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	InProgress  bool    `json:"inProgress"`
	StartedAt   *string `json:"startedAt"`
	EndedAt     *string `json:"endedAt"`
}

func (t Todo) MarshalJSON() ([]byte, error) {
	return json.Marshal(todoJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		RemindIn:    formatOptional(t.RemindIn),
		CreatedAt:   FormatTimestamp(t.CreatedAt),
		UpdatedAt:   FormatTimestamp(t.UpdatedAt),
		InProgress:  t.InProgress,
		StartedAt:   formatOptional(t.StartedAt),
		EndedAt:     formatOptional(t.EndedAt),
	})
}

func (t *Todo) UnmarshalJSON(data []byte) error {
	var w todoJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	created, err := parseRequired(w.CreatedAt)
	if err != nil {
		return err
	}
	updated, err := parseRequired(w.UpdatedAt)
	if err != nil {
		return err
	}
	remind, err := parseOptional(w.RemindIn)
	if err != nil {
		return err
	}
	started, err := parseOptional(w.StartedAt)
	if err != nil {
		return err
	}
	ended, err := parseOptional(w.EndedAt)
	if err != nil {
		return err
	}

	*t = Todo{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Status:      w.Status,
		RemindIn:    remind,
		CreatedAt:   created,
		UpdatedAt:   updated,
		InProgress:  w.InProgress,
		StartedAt:   started,
		EndedAt:     ended,
	}
	return nil
}

func formatOptional(p *time.Time) *string {
	if p == nil {
		return nil
	}
	s := FormatTimestamp(*p)
	return &s
}

func parseRequired(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return ParseTimestamp(s)
}

func parseOptional(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := ParseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
