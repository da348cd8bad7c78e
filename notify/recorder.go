// Package notify provides guestbook notification sinks: a terminal renderer,
// a structured logger, a Prometheus counting decorator, a fan-out and a
// recorder.
package notify

import (
	"context"
	"slices"
	"sync"

	"github.com/jacentio/guestbook/guestbook"
)

// Recorder keeps every notification it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []guestbook.Notification
}

// Notify records n.
func (r *Recorder) Notify(_ context.Context, n guestbook.Notification) {
	r.mu.Lock()
	r.events = append(r.events, n)
	r.mu.Unlock()
}

// Notifications returns everything recorded so far, oldest first.
func (r *Recorder) Notifications() []guestbook.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Toasts returns the text of every recorded toast.
func (r *Recorder) Toasts() []string {
	var out []string
	for _, n := range r.Notifications() {
		if n.Kind == guestbook.KindToast {
			out = append(out, n.Text)
		}
	}
	return out
}

// Bursts returns the requested count of every recorded confetti burst.
// Zero means the default burst was requested.
func (r *Recorder) Bursts() []int {
	var out []int
	for _, n := range r.Notifications() {
		if n.Kind == guestbook.KindConfetti {
			out = append(out, n.Count)
		}
	}
	return out
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
