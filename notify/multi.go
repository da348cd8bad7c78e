package notify

import (
	"context"

	"github.com/jacentio/guestbook/guestbook"
)

// Multi forwards every notification to each sink in order. Nil sinks are skipped.
type Multi []guestbook.Sink

// Notify forwards n.
func (m Multi) Notify(ctx context.Context, n guestbook.Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}
