// Package guestbook implements a threaded guestbook: an ordered, capped
// collection of entries persisted to a key-value store, a set of
// pattern-matched easter eggs evaluated on every submission, and a derived
// reply tree for display.
//
// # Entries
//
// An [Entry] is either a root post or a reply that references another entry
// by ID. Entries are immutable; the only way one disappears is eviction once
// the collection grows past [Config.MaxEntries]. Eviction drops the oldest
// entries by list position. New entries are always prepended.
//
// # Collaborators
//
// A [Book] depends on three interfaces:
//
//   - [KV] persists the entry list and the secret flag as JSON values.
//   - [Sink] receives fire-and-forget toast and confetti requests.
//   - [Scheduler] runs automated replies after a short delay.
//
// Storage failures never fail a submission. They are logged and the
// in-memory state keeps the change.
//
// # Easter eggs
//
// Submissions are checked, in order, for the confetti phrase, the secret
// names, an exact "first!" message and the names nyan answers to. See
// [Triggers] for the full catalogue.
//
// # Thread view
//
// [Book.BuildThreadView] derives the reply tree from the flat list on every
// call. Entries whose parent was evicted are shown at the root with a
// fallback "replying to" label.
package guestbook
