package notify

import (
	"context"
	"sync"
)

// Sent is one notification captured by a Recorder
type Sent struct {
	Title string
	Body  string
}

// Recorder is an in-memory Notifier for tests and headless runs
type Recorder struct {
	mu      sync.Mutex
	granted bool
	sent    []Sent
}

// NewRecorder returns a recorder with the given permission
func NewRecorder(granted bool) *Recorder {
	return &Recorder{granted: granted}
}

func (r *Recorder) Permission() Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.granted {
		return PermissionGranted
	}
	return PermissionDenied
}

func (r *Recorder) Notify(_ context.Context, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.granted {
		return ErrNotificationUnavailable
	}
	r.sent = append(r.sent, Sent{Title: title, Body: body})
	return nil
}

// Sent returns a copy of everything dispatched so far
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sent, len(r.sent))
	copy(out, r.sent)
	return out
}
