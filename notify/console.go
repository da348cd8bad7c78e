package notify

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/jacentio/guestbook/guestbook"
)

// DefaultConfettiCount is the burst size used when a notification leaves Count at zero.
const DefaultConfettiCount = 24

var confettiPieces = []string{"✨", "💖", "🐟", "😼", "⭐", "🌸"}

// Console renders notifications as lines of text, one per notification.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	rnd *rand.Rand
}

// NewConsole writes to w. A nil rnd uses the global math/rand source.
func NewConsole(w io.Writer, rnd *rand.Rand) *Console {
	return &Console{w: w, rnd: rnd}
}

// Notify writes a toast as "» text" and a burst as a row of confetti pieces.
func (c *Console) Notify(_ context.Context, n guestbook.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch n.Kind {
	case guestbook.KindToast:
		fmt.Fprintf(c.w, "» %s\n", n.Text)
	case guestbook.KindConfetti:
		count := n.Count
		if count <= 0 {
			count = DefaultConfettiCount
		}
		var sb strings.Builder
		for range count {
			sb.WriteString(confettiPieces[c.pick(len(confettiPieces))])
		}
		fmt.Fprintln(c.w, sb.String())
	}
}

func (c *Console) pick(n int) int {
	if c.rnd != nil {
		return c.rnd.IntN(n)
	}
	return rand.IntN(n)
}
