package ui

import (
	"github.com/dori/tempo/internal/timers"
	"github.com/dori/tempo/internal/watch"
)

// Messages for inter-component communication

// TimerEventMsg carries a reminder or elapsed tick from the scheduler
type TimerEventMsg struct {
	Event timers.Event
}

// StoreChangedMsg means another process wrote to the database
type StoreChangedMsg struct {
	Change watch.Change
}

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}
