package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time { return &t }

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		field string
	}{
		{"valid", Draft{Title: "Buy milk", Description: "2 liters"}, ""},
		{"empty title", Draft{Title: "", Description: "x"}, "title"},
		{"blank title", Draft{Title: "   ", Description: "x"}, "title"},
		{"empty description", Draft{Title: "x", Description: "\t"}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, "the "+tt.field+" field is required", err.Error())
		})
	}
}

func TestDraftNormalize(t *testing.T) {
	remind := time.Date(2026, 5, 10, 12, 30, 15, 123456789, time.FixedZone("x", 2*3600))

	d := Draft{Title: "  a ", Description: " b\n", RemindIn: &remind}.Normalize()

	assert.Equal(t, "a", d.Title)
	assert.Equal(t, "b", d.Description)
	require.NotNil(t, d.RemindIn)
	assert.Equal(t, time.Date(2026, 5, 10, 10, 30, 15, 123000000, time.UTC), *d.RemindIn)
	assert.Equal(t, time.FixedZone("x", 2*3600).String(), remind.Location().String(), "input must not be mutated")
}

func TestTodoValidate(t *testing.T) {
	start := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	ok := Todo{Title: "a", Description: "b", InProgress: true, StartedAt: &start}
	assert.NoError(t, ok.Validate())

	ended := Todo{Title: "a", Description: "b", StartedAt: &start, EndedAt: ptr(start.Add(time.Hour))}
	assert.NoError(t, ended.Validate())

	noStart := Todo{Title: "a", Description: "b", EndedAt: &start}
	assert.ErrorIs(t, noStart.Validate(), ErrValidation)

	backwards := Todo{Title: "a", Description: "b", StartedAt: &start, EndedAt: ptr(start.Add(-time.Second))}
	assert.ErrorIs(t, backwards.Validate(), ErrValidation)

	runningEnded := Todo{Title: "a", Description: "b", InProgress: true, StartedAt: &start, EndedAt: ptr(start.Add(time.Minute))}
	assert.ErrorIs(t, runningEnded.Validate(), ErrValidation)
}

func TestSessionElapsed(t *testing.T) {
	start := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	now := start.Add(90 * time.Minute)

	var never Todo
	_, ok := never.SessionElapsed(now)
	assert.False(t, ok)

	running := Todo{InProgress: true, StartedAt: &start}
	d, ok := running.SessionElapsed(now)
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, d)
	assert.True(t, running.SessionRunning())

	ended := Todo{StartedAt: &start, EndedAt: ptr(start.Add(3*time.Second + 500*time.Millisecond))}
	d, ok = ended.SessionElapsed(now.Add(24 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, 3500*time.Millisecond, d, "ended sessions ignore the clock")
	assert.True(t, ended.SessionEnded())
	assert.False(t, ended.SessionRunning())
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want Elapsed
		str  string
	}{
		{0, Elapsed{}, "00:00:00"},
		{-5 * time.Second, Elapsed{}, "00:00:00"},
		{3500 * time.Millisecond, Elapsed{Seconds: 3}, "00:00:03"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, Elapsed{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}, "1d 02:03:04"},
	}

	for _, tt := range tests {
		got := Decompose(tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.str, got.String())
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	in := time.Date(2026, 5, 10, 23, 30, 0, 987654321, time.FixedZone("x", -4*3600))

	s := FormatTimestamp(in)
	assert.Equal(t, "2026-05-11T03:30:00.987Z", s)

	parsed, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(Timestamp(in)))

	offset, err := ParseTimestamp("2026-05-11T05:30:00.987+02:00")
	require.NoError(t, err)
	assert.Equal(t, parsed, offset)

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2026-05-10", DateKey(time.Date(2026, 5, 10, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, "2026-05-09", DateKey(time.Date(2026, 5, 10, 1, 0, 0, 0, time.FixedZone("x", 3*3600))))
}

func TestHumanize(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "in a few seconds", Humanize(now.Add(10*time.Second), now))
	assert.Equal(t, "in 5 minutes", Humanize(now.Add(5*time.Minute), now))
	assert.Equal(t, "2 hours ago", Humanize(now.Add(-2*time.Hour), now))
	assert.Equal(t, "a day ago", Humanize(now.Add(-30*time.Hour), now))
	assert.Equal(t, "in 3 days", Humanize(now.Add(72*time.Hour), now))
}

func TestCloneDoesNotAlias(t *testing.T) {
	start := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	orig := Todo{ID: 1, StartedAt: &start, RemindIn: ptr(start)}

	c := orig.Clone()
	*c.StartedAt = start.Add(time.Hour)

	assert.Equal(t, start, *orig.StartedAt)
	assert.Nil(t, c.EndedAt)
}

func TestTodoJSONFieldNames(t *testing.T) {
	created := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	data, err := json.Marshal(Todo{ID: 7, Title: "a", Description: "b", CreatedAt: created, UpdatedAt: created})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "title", "description", "status", "remindIn", "createdAt", "updatedAt", "inProgress", "startedAt", "endedAt"} {
		assert.Contains(t, fields, key)
	}
	assert.Nil(t, fields["remindIn"])
	assert.Equal(t, "2026-05-10T09:00:00.000Z", fields["createdAt"])
}

func TestTodoJSONTimestampsAreFixedWidth(t *testing.T) {
	whole := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)
	local := time.Date(2026, 1, 1, 12, 0, 0, 0, time.FixedZone("+02:00", 2*3600))

	for _, tc := range []struct {
		in   time.Time
		want string
	}{
		{whole, `"2026-01-01T10:00:00.000Z"`},
		{half, `"2026-01-01T10:00:00.500Z"`},
		{local, `"2026-01-01T10:00:00.000Z"`},
	} {
		data, err := json.Marshal(Todo{CreatedAt: tc.in, UpdatedAt: tc.in, RemindIn: &tc.in})
		require.NoError(t, err)

		var fields map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Equal(t, tc.want, string(fields["createdAt"]))
		assert.Equal(t, tc.want, string(fields["remindIn"]))
	}
}

func TestTodoJSONRoundTrip(t *testing.T) {
	created := time.Date(2026, 5, 10, 9, 0, 0, 123000000, time.UTC)
	started := created.Add(time.Minute)
	in := Todo{ID: 1, Title: "a", Description: "b", CreatedAt: created, UpdatedAt: created, InProgress: true, StartedAt: &started}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Todo
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"createdAt":"yesterday"}`), &out))
}

func TestParseRemind(t *testing.T) {
	loc := time.FixedZone("x", 2*3600)
	now := time.Date(2026, 5, 10, 14, 20, 0, 0, loc)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"+15m", now.Add(15 * time.Minute)},
		{"1h30m", now.Add(90 * time.Minute)},
		{"16:00", time.Date(2026, 5, 10, 16, 0, 0, 0, loc)},
		{"09:00", time.Date(2026, 5, 11, 9, 0, 0, 0, loc)},
		{"tomorrow 08:30", time.Date(2026, 5, 11, 8, 30, 0, 0, loc)},
		{"2026-06-01T10:00", time.Date(2026, 6, 1, 10, 0, 0, 0, loc)},
		{"2026-06-01T10:00:00Z", time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRemind(tt.in, now)
			require.NoError(t, err)
			assert.Equal(t, Timestamp(tt.want), got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, bad := range []string{"", "soon", "-5m", "25:00"} {
		_, err := ParseRemind(bad, now)
		assert.Error(t, err, bad)
	}
}
