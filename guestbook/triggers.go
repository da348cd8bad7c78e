package guestbook

import (
	"context"
	"slices"
	"strings"
)

const (
	// SecretMousey is the secret flag value unlocked by the mousey names.
	SecretMousey = "mousey"

	// MouseyToast announces the unlocked secret.
	MouseyToast = "Mousey mode unlocked"

	// SecretConfettiCount is the size of the burst fired on unlock.
	SecretConfettiCount = 36

	confettiPhrase = "what the freak"
	firstMessage   = "first!"
)

var (
	secretNames = []string{"ironmouse", "mousey"}
	nyanNames   = []string{"ren", "rena", "ren-chan", "rena-chan", "renaldi", "fishboy"}

	roastPhrases = []string{
		"not anymore.",
		"congrats on inventing numbers.",
		"ok pioneer of comments sections.",
		"bold of you to assume i care.",
	}

	affectionPhrases = []string{
		"i love you, rena-chan.",
		"mine.",
		"get in the hoodie.",
		"kissing you now. no refunds.",
		"you’re my favorite fish.",
		"i pick you. every time.",
		"thanks for existing, idiot. (affectionate)",
		"cuddle tax is due.",
		"i’m keeping you. try and stop me.",
	}
)

// RoastPhrases returns the replies to an exact "first!" post.
func RoastPhrases() []string { return slices.Clone(roastPhrases) }

// AffectionPhrases returns the replies to names nyan answers to.
func AffectionPhrases() []string { return slices.Clone(affectionPhrases) }

// NyanNames returns the submitter names that get an affection reply.
func NyanNames() []string { return slices.Clone(nyanNames) }

// Trigger is an easter egg checked against every submitted entry.
type Trigger struct {
	// Name identifies the trigger in logs.
	Name string

	// Hint is a one-line description suitable for a help panel.
	Hint string

	match func(e Entry) bool
	fire  func(ctx context.Context, b *Book, e Entry)
}

// Matches reports whether e sets the trigger off.
func (t Trigger) Matches(e Entry) bool {
	return t.match(e)
}

// Triggers returns the easter egg catalogue in evaluation order.
func Triggers() []Trigger {
	return defaultTriggers(DefaultConfig())
}

func defaultTriggers(config Config) []Trigger {
	return []Trigger{
		{
			Name: "confetti",
			Hint: `Message contains "what the freak" → confetti pops.`,
			match: func(e Entry) bool {
				return strings.Contains(strings.ToLower(e.Message), confettiPhrase)
			},
			fire: func(ctx context.Context, b *Book, _ Entry) {
				b.sink.Notify(ctx, Confetti(0))
			},
		},
		{
			Name: "secret",
			Hint: "Name ironmouse or mousey → unlocks a pinkish secret theme.",
			match: func(e Entry) bool {
				return slices.Contains(secretNames, strings.ToLower(e.Name))
			},
			fire: func(ctx context.Context, b *Book, _ Entry) {
				b.unlockSecret(ctx, SecretMousey)
				b.sink.Notify(ctx, Toast(MouseyToast))
				b.sink.Notify(ctx, Confetti(SecretConfettiCount))
			},
		},
		{
			Name: "first",
			Hint: "Message exactly first! → " + config.BotName + " roasts you (deserved).",
			match: func(e Entry) bool {
				return strings.EqualFold(e.Message, firstMessage)
			},
			fire: func(ctx context.Context, b *Book, e Entry) {
				b.scheduleReply(ctx, e.ID, b.config.RoastDelay, roastPhrases)
			},
		},
		{
			Name: "affection",
			Hint: "Names " + strings.Join(nyanNames, "/") + " → " + config.BotName + " replies to your comment.",
			match: func(e Entry) bool {
				return slices.Contains(nyanNames, strings.ToLower(e.Name))
			},
			fire: func(ctx context.Context, b *Book, e Entry) {
				b.scheduleReply(ctx, e.ID, b.config.AffectionDelay, affectionPhrases)
			},
		},
	}
}
