package timers

import (
	"testing"
	"time"

	"github.com/dori/tempo/internal/model"
	"github.com/dori/tempo/internal/notify"
	"github.com/stretchr/testify/assert"
)

var remindAt = time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)

func withReminder(at time.Time) model.Todo {
	return model.Todo{ID: 1, Title: "Call mom", Description: "sunday call", RemindIn: &at}
}

func TestReminderFiresOnceInSameMinute(t *testing.T) {
	r := NewReminder(withReminder(remindAt), notify.PermissionGranted)
	assert.Equal(t, Armed, r.State())

	assert.True(t, r.Check(remindAt.Add(20*time.Second)))
	assert.Equal(t, Fired, r.State())

	assert.False(t, r.Check(remindAt.Add(40*time.Second)), "second check in the same minute must not fire")
	assert.False(t, r.Check(remindAt.Add(time.Hour)))
}

func TestReminderStaysArmedBeforeDue(t *testing.T) {
	r := NewReminder(withReminder(remindAt), notify.PermissionGranted)

	assert.False(t, r.Check(remindAt.Add(-time.Second)))
	assert.Equal(t, Armed, r.State())
}

func TestReminderStaleNeverFires(t *testing.T) {
	r := NewReminder(withReminder(remindAt), notify.PermissionGranted)

	assert.False(t, r.Check(remindAt.Add(time.Minute)))
	assert.Equal(t, Idle, r.State())
	assert.False(t, r.Check(remindAt), "an idle reminder never re-arms")
}

func TestReminderNotArmable(t *testing.T) {
	done := withReminder(remindAt)
	done.Status = true

	tests := []struct {
		name string
		todo model.Todo
		perm notify.Permission
	}{
		{"completed", done, notify.PermissionGranted},
		{"no reminder", model.Todo{ID: 1}, notify.PermissionGranted},
		{"permission denied", withReminder(remindAt), notify.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Armable(tt.todo, tt.perm))
			r := NewReminder(tt.todo, tt.perm)
			assert.Equal(t, Idle, r.State())
			assert.False(t, r.Check(remindAt))
		})
	}
}
