package guestbook

import "time"

// Config holds configuration for a Book.
type Config struct {
	// EntriesKey is the key-value store key holding the entry list.
	// Default: "guestbook-entries"
	EntriesKey string

	// SecretKey is the key-value store key holding the secret flag.
	// Default: "secret-flag"
	SecretKey string

	// MaxEntries caps the collection. Oldest entries by list position are
	// evicted once a prepend pushes the length past it.
	// Default: 200
	MaxEntries int

	// RoastDelay is how long after a "first!" post the roast reply lands.
	// Default: 480ms
	RoastDelay time.Duration

	// AffectionDelay is how long after a post from a name nyan answers to
	// the affection reply lands.
	// Default: 450ms
	AffectionDelay time.Duration

	// BotName is the author name of automated replies and the display name
	// of any automated entry.
	// Default: "nyan"
	BotName string

	// AnonymousName replaces blank submitter names.
	// Default: "anon"
	AnonymousName string

	// FallbackLabel is shown as the "replying to" name when the parent entry
	// is no longer in the collection.
	// Default: "comment"
	FallbackLabel string
}

// DefaultConfig returns the settings the site shipped with.
func DefaultConfig() Config {
	return Config{
		EntriesKey:     "guestbook-entries",
		SecretKey:      "secret-flag",
		MaxEntries:     200,
		RoastDelay:     480 * time.Millisecond,
		AffectionDelay: 450 * time.Millisecond,
		BotName:        "nyan",
		AnonymousName:  "anon",
		FallbackLabel:  "comment",
	}
}

// validate fills zero values with defaults.
func (c *Config) validate() {
	d := DefaultConfig()
	if c.EntriesKey == "" {
		c.EntriesKey = d.EntriesKey
	}
	if c.SecretKey == "" {
		c.SecretKey = d.SecretKey
	}
	if c.MaxEntries < 1 {
		c.MaxEntries = d.MaxEntries
	}
	if c.RoastDelay <= 0 {
		c.RoastDelay = d.RoastDelay
	}
	if c.AffectionDelay <= 0 {
		c.AffectionDelay = d.AffectionDelay
	}
	if c.BotName == "" {
		c.BotName = d.BotName
	}
	if c.AnonymousName == "" {
		c.AnonymousName = d.AnonymousName
	}
	if c.FallbackLabel == "" {
		c.FallbackLabel = d.FallbackLabel
	}
}
