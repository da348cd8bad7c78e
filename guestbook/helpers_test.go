package guestbook_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jacentio/guestbook/guestbook"
	"github.com/jacentio/guestbook/notify"
)

var epoch = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// manualClock is a Scheduler and a clock in one: tasks run only when the
// test advances time.
type manualClock struct {
	mu      sync.Mutex
	elapsed time.Duration
	tasks   []manualTask
	seq     int
}

type manualTask struct {
	due time.Duration
	seq int
	fn  func()
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return epoch.Add(c.elapsed)
}

func (c *manualClock) After(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.tasks = append(c.tasks, manualTask{due: c.elapsed + d, seq: c.seq, fn: fn})
}

// Advance moves time forward and runs every task that became due, in due order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.elapsed + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.tasks, func(i, j int) bool {
			if c.tasks[i].due != c.tasks[j].due {
				return c.tasks[i].due < c.tasks[j].due
			}
			return c.tasks[i].seq < c.tasks[j].seq
		})
		if len(c.tasks) == 0 || c.tasks[0].due > target {
			c.elapsed = target
			c.mu.Unlock()
			return
		}
		next := c.tasks[0]
		c.tasks = c.tasks[1:]
		c.elapsed = next.due
		c.mu.Unlock()

		next.fn()
	}
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

func (c *manualClock) Wait() { c.Advance(time.Hour) }

func (c *manualClock) Close() {
	c.mu.Lock()
	c.tasks = nil
	c.mu.Unlock()
}

// recordingKV is an in-memory KV that counts writes and can be told to fail.
type recordingKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    map[string]int
	failGet bool
	failSet bool
}

var errUnavailable = errors.New("storage unavailable")

func newRecordingKV() *recordingKV {
	return &recordingKV{data: map[string][]byte{}, sets: map[string]int{}}
}

func (kv *recordingKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.failGet {
		return nil, errUnavailable
	}
	return kv.data[key], nil
}

func (kv *recordingKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.failSet {
		return errUnavailable
	}
	kv.data[key] = append([]byte(nil), value...)
	kv.sets[key]++
	return nil
}

func (kv *recordingKV) setCount(key string) int {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.sets[key]
}

func (kv *recordingKV) stored(t *testing.T, key string) []guestbook.Entry {
	t.Helper()
	kv.mu.Lock()
	data := kv.data[key]
	kv.mu.Unlock()
	entries, err := guestbook.DecodeEntries(data)
	require.NoError(t, err)
	return entries
}

type fixture struct {
	book  *guestbook.Book
	kv    *recordingKV
	sink  *notify.Recorder
	clock *manualClock
}

func newFixture(t *testing.T, kv *recordingKV, opts ...guestbook.Option) *fixture {
	t.Helper()
	if kv == nil {
		kv = newRecordingKV()
	}
	f := &fixture{
		kv:    kv,
		sink:  &notify.Recorder{},
		clock: &manualClock{},
	}

	ids := 0
	base := []guestbook.Option{
		guestbook.WithScheduler(f.clock),
		guestbook.WithClock(f.clock.Now),
		guestbook.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("id-%03d", ids)
		}),
		guestbook.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	f.book = guestbook.Open(context.Background(), kv, f.sink, guestbook.DefaultConfig(), append(base, opts...)...)
	t.Cleanup(f.book.Close)
	return f
}

// seed stores n entries, newest first, created one minute apart.
func seed(t *testing.T, kv *recordingKV, n int) []guestbook.Entry {
	t.Helper()
	entries := make([]guestbook.Entry, n)
	for i := range entries {
		entries[i] = guestbook.Entry{
			ID:        fmt.Sprintf("seed-%03d", i),
			Name:      "visitor",
			Message:   fmt.Sprintf("message %d", i),
			CreatedAt: epoch.Add(-time.Duration(i+1) * time.Minute),
		}
	}
	data, err := guestbook.EncodeEntries(entries)
	require.NoError(t, err)
	kv.data["guestbook-entries"] = data
	return entries
}

func ptr(s string) *string { return &s }
