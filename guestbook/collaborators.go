package guestbook

import (
	"context"
	"math/rand/v2"
)

// KV is the durable key-value store a Book loads from and writes to.
type KV interface {
	// Get returns the stored value, or nil and no error when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// Kind identifies a notification type.
type Kind string

const (
	// KindToast requests a short text message.
	KindToast Kind = "toast"

	// KindConfetti requests a confetti burst.
	KindConfetti Kind = "confetti"
)

// Notification is a fire-and-forget request to the presentation layer.
type Notification struct {
	Kind Kind

	// Text is the toast message. Unused for confetti.
	Text string

	// Count is the number of confetti pieces. Zero means the sink's default.
	Count int
}

// Toast builds a toast notification.
func Toast(text string) Notification {
	return Notification{Kind: KindToast, Text: text}
}

// Confetti builds a confetti notification. A count of zero asks for the default burst.
func Confetti(count int) Notification {
	return Notification{Kind: KindConfetti, Count: count}
}

// Sink receives notifications. Implementations must not block for long and
// must not call back into the Book.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, n Notification)

// Notify calls f(ctx, n).
func (f SinkFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type discardSink struct{}

func (discardSink) Notify(context.Context, Notification) {}

// Picker chooses uniformly among n options.
type Picker interface {
	// Pick returns an index in [0, n). n is always positive.
	Pick(n int) int
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(n int) int

// Pick calls f(n).
func (f PickerFunc) Pick(n int) int { return f(n) }

type randPicker struct{}

func (randPicker) Pick(n int) int { return rand.IntN(n) }
