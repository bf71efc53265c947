package notify

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// ErrNotificationUnavailable is returned when the host cannot or may not
// show notifications
var ErrNotificationUnavailable = errors.New("notifications unavailable")

// Permission mirrors the host's notification permission
type Permission int

const (
	PermissionDenied Permission = iota
	PermissionGranted
)

func (p Permission) String() string {
	if p == PermissionGranted {
		return "granted"
	}
	return "denied"
}

// Notifier dispatches user-visible notifications
type Notifier interface {
	Permission() Permission
	Notify(ctx context.Context, title, body string) error
}

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Desktop sends notifications through notify-send
type Desktop struct {
	enabled  bool
	command  string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error

	once sync.Once
	path string
}

// NewDesktop creates a desktop notifier. A disabled notifier reports
// PermissionDenied.
func NewDesktop(enabled bool) *Desktop {
	return &Desktop{
		enabled:  enabled,
		command:  "notify-send",
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Permission is granted when enabled and notify-send is on PATH
func (n *Desktop) Permission() Permission {
	if !n.enabled {
		return PermissionDenied
	}
	n.once.Do(func() {
		if p, err := n.lookPath(n.command); err == nil {
			n.path = p
		}
	})
	if n.path == "" {
		return PermissionDenied
	}
	return PermissionGranted
}

// Notify shows a reminder with the todo title and description
func (n *Desktop) Notify(ctx context.Context, title, body string) error {
	return n.Send(ctx, Notification{
		Title:   title,
		Body:    body,
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		Icon:    "appointment-soon-symbolic",
	})
}

// Send sends a desktop notification using notify-send
func (n *Desktop) Send(ctx context.Context, notification Notification) error {
	if n.Permission() != PermissionGranted {
		return ErrNotificationUnavailable
	}
	return n.run(ctx, n.path, Args(notification)...)
}

// Args builds the notify-send argument list
func Args(notification Notification) []string {
	args := []string{}

	// Add urgency
	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Add timeout (in milliseconds)
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "tempo")

	// Title and body are positional even when they start with a dash
	args = append(args, "--", notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	return args
}
