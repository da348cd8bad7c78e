package notify

import (
	"context"
	"log/slog"

	"github.com/jacentio/guestbook/guestbook"
)

// Log writes every notification to a structured logger at info level.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log sink. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Notify logs n.
func (l *Log) Notify(ctx context.Context, n guestbook.Notification) {
	switch n.Kind {
	case guestbook.KindToast:
		l.logger.InfoContext(ctx, "toast", "text", n.Text)
	case guestbook.KindConfetti:
		count := n.Count
		if count <= 0 {
			count = DefaultConfettiCount
		}
		l.logger.InfoContext(ctx, "confetti", "pieces", count)
	default:
		l.logger.WarnContext(ctx, "unknown notification kind", "kind", string(n.Kind))
	}
}
