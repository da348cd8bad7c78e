package guestbook

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Book owns the ordered entry list, the reply target and the secret flag.
//
// All operations are serialized; a submission and a deferred automated reply
// never interleave. Storage writes happen inside the same critical section as
// the mutation they persist, so the store always sees lists in mutation order.
type Book struct {
	mu      sync.Mutex
	entries []Entry
	replyTo string
	secret  string

	kv       KV
	sink     Sink
	config   Config
	triggers []Trigger

	sched  Scheduler
	picker Picker
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option customizes a Book.
type Option func(*Book)

// WithScheduler replaces the default TimerScheduler.
func WithScheduler(s Scheduler) Option {
	return func(b *Book) { b.sched = s }
}

// WithPicker replaces the default math/rand phrase picker.
func WithPicker(p Picker) Option {
	return func(b *Book) { b.picker = p }
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// WithIDGenerator replaces uuid.NewString for entry IDs.
func WithIDGenerator(newID func() string) Option {
	return func(b *Book) { b.newID = newID }
}

// WithLogger sets the logger. Nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Book) { b.logger = l }
}

// Open creates a Book and loads its state from kv.
//
// A missing, unreadable or undecodable value starts the Book empty; Open
// never fails. A nil kv keeps everything in memory and a nil sink discards
// notifications.
func Open(ctx context.Context, kv KV, sink Sink, config Config, opts ...Option) *Book {
	config.validate()

	b := &Book{
		kv:     kv,
		sink:   sink,
		config: config,
		picker: randPicker{},
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.sink == nil {
		b.sink = discardSink{}
	}
	if b.sched == nil {
		b.sched = NewTimerScheduler()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.triggers = defaultTriggers(b.config)

	b.load(ctx)
	return b
}

func (b *Book) load(ctx context.Context) {
	if b.kv == nil {
		return
	}

	data, err := b.kv.Get(ctx, b.config.EntriesKey)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to read guestbook entries",
			"key", b.config.EntriesKey,
			"error", err,
		)
	} else if entries, err := DecodeEntries(data); err != nil {
		b.logger.WarnContext(ctx, "discarding unreadable guestbook entries",
			"key", b.config.EntriesKey,
			"error", err,
		)
	} else {
		b.entries = b.capped(entries)
	}

	data, err = b.kv.Get(ctx, b.config.SecretKey)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to read secret flag",
			"key", b.config.SecretKey,
			"error", err,
		)
		return
	}
	secret, err := DecodeSecret(data)
	if err != nil {
		b.logger.WarnContext(ctx, "discarding unreadable secret flag",
			"key", b.config.SecretKey,
			"error", err,
		)
		return
	}
	b.secret = secret
	if secret == SecretMousey {
		b.sink.Notify(ctx, Toast(MouseyToast))
	}
}

// Submit records a visitor post, replying to the current reply target if one
// is set, and fires any matching easter eggs.
//
// Message and name are trimmed; a blank name becomes the anonymous name.
// An empty message is ignored: Submit returns false and nothing happens.
// The reply target is cleared after a successful submission.
func (b *Book) Submit(ctx context.Context, name, message string) (Entry, bool) {
	text := strings.TrimSpace(message)
	if text == "" {
		return Entry{}, false
	}
	who := strings.TrimSpace(name)
	if who == "" {
		who = b.config.AnonymousName
	}

	b.mu.Lock()
	e := Entry{
		ID:        b.newID(),
		Name:      who,
		Message:   text,
		CreatedAt: b.now(),
	}
	if b.replyTo != "" {
		parent := b.replyTo
		e.ParentID = &parent
	}
	b.prependLocked(ctx, e)
	b.replyTo = ""
	b.mu.Unlock()

	b.logger.DebugContext(ctx, "guestbook entry added",
		"entryID", e.ID,
		"parentID", e.Parent(),
	)

	for _, t := range b.triggers {
		if t.match(e) {
			b.logger.DebugContext(ctx, "easter egg triggered",
				"trigger", t.Name,
				"entryID", e.ID,
			)
			t.fire(ctx, b, e)
		}
	}

	return e.clone(), true
}

// SetReplyTarget selects the entry the next submission replies to.
// An empty id clears the target. The target is never persisted.
func (b *Book) SetReplyTarget(id string) {
	b.mu.Lock()
	b.replyTo = id
	b.mu.Unlock()
}

// ClearReplyTarget makes the next submission a root entry.
func (b *Book) ClearReplyTarget() {
	b.SetReplyTarget("")
}

// ReplyTarget returns the current reply target, if any.
func (b *Book) ReplyTarget() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.replyTo, b.replyTo != ""
}

// ReplyingToName returns the display name of the current reply target, or
// the fallback label when that entry is gone.
func (b *Book) ReplyingToName() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.replyTo == "" {
		return "", false
	}
	return b.labelFor(indexByID(b.entries), b.replyTo), true
}

// Entries returns a copy of the collection, newest first.
func (b *Book) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneEntries(b.entries)
}

// Len returns the number of entries.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Secret returns the unlocked secret, or "" when none is.
func (b *Book) Secret() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.secret
}

// Reload replaces the collection with entries written elsewhere, such as
// another process sharing the store. Nothing is written back.
func (b *Book) Reload(ctx context.Context, entries []Entry) {
	b.mu.Lock()
	b.entries = b.capped(cloneEntries(entries))
	n := len(b.entries)
	b.mu.Unlock()

	b.logger.DebugContext(ctx, "guestbook reloaded", "entries", n)
}

// ApplySecret replaces the secret flag with a value written elsewhere.
// Switching into mousey mode announces it the same way a load does.
func (b *Book) ApplySecret(ctx context.Context, secret string) {
	b.mu.Lock()
	changed := b.secret != secret
	b.secret = secret
	b.mu.Unlock()

	if changed && secret == SecretMousey {
		b.sink.Notify(ctx, Toast(MouseyToast))
	}
}

// Wait blocks until all scheduled automated replies have landed.
func (b *Book) Wait() {
	b.sched.Wait()
}

// Close drops automated replies that have not been written yet.
func (b *Book) Close() {
	b.sched.Close()
}

// unlockSecret persists and applies a secret flag.
func (b *Book) unlockSecret(ctx context.Context, secret string) {
	b.mu.Lock()
	b.secret = secret
	if b.kv != nil {
		data, _ := json.Marshal(secret)
		if err := b.kv.Set(ctx, b.config.SecretKey, data); err != nil {
			b.logger.WarnContext(ctx, "failed to persist secret flag",
				"key", b.config.SecretKey,
				"error", err,
			)
		}
	}
	b.mu.Unlock()
}

// scheduleReply queues an automated reply to parentID. The ID is fixed now;
// the phrase and timestamp are chosen when the reply lands.
func (b *Book) scheduleReply(ctx context.Context, parentID string, delay time.Duration, phrases []string) {
	b.mu.Lock()
	id := b.newID()
	b.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	b.sched.After(delay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		parent := parentID
		reply := Entry{
			ID:        id,
			Name:      b.config.BotName,
			Message:   phrases[b.picker.Pick(len(phrases))],
			CreatedAt: b.now(),
			ParentID:  &parent,
			Automated: true,
		}
		b.prependLocked(ctx, reply)

		b.logger.DebugContext(ctx, "automated reply added",
			"entryID", reply.ID,
			"parentID", parentID,
		)
	})
}

// prependLocked puts e at the front, evicts past the cap and persists.
func (b *Book) prependLocked(ctx context.Context, e Entry) {
	next := make([]Entry, 0, len(b.entries)+1)
	next = append(next, e)
	next = append(next, b.entries...)
	if evicted := len(next) - b.config.MaxEntries; evicted > 0 {
		b.logger.DebugContext(ctx, "evicting oldest guestbook entries", "count", evicted)
	}
	b.entries = b.capped(next)
	b.persistLocked(ctx)
}

func (b *Book) persistLocked(ctx context.Context) {
	if b.kv == nil {
		return
	}
	data, err := EncodeEntries(b.entries)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to encode guestbook entries", "error", err)
		return
	}
	if err := b.kv.Set(ctx, b.config.EntriesKey, data); err != nil {
		b.logger.WarnContext(ctx, "failed to persist guestbook entries",
			"key", b.config.EntriesKey,
			"entries", len(b.entries),
			"error", err,
		)
	}
}

func (b *Book) capped(entries []Entry) []Entry {
	if len(entries) > b.config.MaxEntries {
		return entries[:b.config.MaxEntries]
	}
	return entries
}
