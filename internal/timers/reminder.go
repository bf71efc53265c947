package timers

import (
	"time"

	"github.com/dori/tempo/internal/model"
	"github.com/dori/tempo/internal/notify"
)

// ReminderGranularity is the bucket both times are truncated to before
// comparing
const ReminderGranularity = time.Minute

// State of a reminder
type State int

const (
	Idle State = iota
	Armed
	Fired
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return "idle"
	}
}

// Armable reports whether a todo's reminder may be armed
func Armable(t model.Todo, perm notify.Permission) bool {
	return perm == notify.PermissionGranted && !t.Status && t.RemindIn != nil
}

// Reminder decides when a single todo's reminder fires. It holds no clock
// and starts no goroutines.
type Reminder struct {
	at    time.Time
	state State
}

// NewReminder returns an Armed reminder for an armable todo and an Idle one
// otherwise.
func NewReminder(t model.Todo, perm notify.Permission) *Reminder {
	if !Armable(t, perm) {
		return &Reminder{}
	}
	return &Reminder{at: *t.RemindIn, state: Armed}
}

// State returns the current state
func (r *Reminder) State() State {
	return r.state
}

// Check advances the reminder to now and reports whether it fires.
// It returns true at most once over the reminder's lifetime.
func (r *Reminder) Check(now time.Time) bool {
	if r.state != Armed {
		return false
	}
	due := r.at.Truncate(ReminderGranularity)
	cur := now.Truncate(ReminderGranularity)
	switch {
	case due.Equal(cur):
		r.state = Fired
		return true
	case due.Before(cur):
		// Stale; the minute passed without a check landing in it
		r.state = Idle
	}
	return false
}
