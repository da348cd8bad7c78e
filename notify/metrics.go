package notify

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jacentio/guestbook/guestbook"
)

// Metrics counts notifications by kind before passing them on.
type Metrics struct {
	next           guestbook.Sink
	notifications  *prometheus.CounterVec
	confettiPieces prometheus.Counter
}

// NewMetrics registers its collectors on reg and wraps next, which may be nil.
// Registering twice on the same registry panics, as with promauto.
func NewMetrics(reg prometheus.Registerer, next guestbook.Sink) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		next: next,
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "guestbook",
				Name:      "notifications_total",
				Help:      "Notifications requested by the guestbook, by kind.",
			},
			[]string{"kind"},
		),
		confettiPieces: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "guestbook",
				Name:      "confetti_pieces_total",
				Help:      "Confetti pieces requested, with default bursts counted at their default size.",
			},
		),
	}
}

// Notify counts n and forwards it.
func (m *Metrics) Notify(ctx context.Context, n guestbook.Notification) {
	m.notifications.WithLabelValues(string(n.Kind)).Inc()
	if n.Kind == guestbook.KindConfetti {
		count := n.Count
		if count <= 0 {
			count = DefaultConfettiCount
		}
		m.confettiPieces.Add(float64(count))
	}
	if m.next != nil {
		m.next.Notify(ctx, n)
	}
}
