// Package stream provides a DynamoDB Streams handler for the guestbook
// key-value table. It keeps other readers in sync and announces entries
// written by someone else.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/guestbook/guestbook"
	"github.com/jacentio/guestbook/internal/itemkey"
)

// Reloader receives state written to the table by another process.
// *guestbook.Book satisfies it.
type Reloader interface {
	Reload(ctx context.Context, entries []guestbook.Entry)
	ApplySecret(ctx context.Context, secret string)
}

// Config selects which items the handler cares about.
type Config struct {
	// Namespace must match the store.DynamoConfig namespace of the writers.
	// Default: "default"
	Namespace string

	// EntriesKey and SecretKey must match the guestbook.Config of the writers.
	// Defaults: "guestbook-entries", "secret-flag"
	EntriesKey string
	SecretKey  string

	// BotName is used when announcing automated entries.
	// Default: "nyan"
	BotName string
}

// DefaultConfig matches store.DefaultDynamoConfig and guestbook.DefaultConfig.
func DefaultConfig() Config {
	gb := guestbook.DefaultConfig()
	return Config{
		Namespace:  "default",
		EntriesKey: gb.EntriesKey,
		SecretKey:  gb.SecretKey,
		BotName:    gb.BotName,
	}
}

func (c *Config) validate() {
	d := DefaultConfig()
	if c.Namespace == "" {
		c.Namespace = d.Namespace
	}
	if c.EntriesKey == "" {
		c.EntriesKey = d.EntriesKey
	}
	if c.SecretKey == "" {
		c.SecretKey = d.SecretKey
	}
	if c.BotName == "" {
		c.BotName = d.BotName
	}
}

// Handler processes DynamoDB stream events for the guestbook table.
type Handler struct {
	config   Config
	reloader Reloader
	sink     guestbook.Sink
	logger   *slog.Logger
}

// NewHandler creates a new stream handler. reloader and sink are optional.
func NewHandler(config Config, reloader Reloader, sink guestbook.Sink, logger *slog.Logger) *Handler {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		config:   config,
		reloader: reloader,
		sink:     sink,
		logger:   logger,
	}
}

// HandleEntriesChanged processes DynamoDB stream events for guestbook items.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleEntriesChanged(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	// REMOVE never happens through the guestbook; nothing to sync.
	if record.EventName != "INSERT" && record.EventName != "MODIFY" {
		return nil
	}

	pk := getStringAttr(record.Change.Keys, "pk")
	if pk == "" {
		pk = getStringAttr(record.Change.NewImage, "pk")
	}
	namespace, key, ok := itemkey.Split(pk)
	if !ok || namespace != h.config.Namespace {
		return nil
	}

	switch key {
	case h.config.EntriesKey:
		return h.entriesChanged(ctx, pk, record)
	case h.config.SecretKey:
		return h.secretChanged(ctx, pk, record)
	default:
		return nil
	}
}

func (h *Handler) entriesChanged(ctx context.Context, pk string, record events.DynamoDBEventRecord) error {
	value, ok := getValueAttr(record.Change.NewImage)
	if !ok {
		h.logger.Warn("stream record has no new image, enable NEW_AND_OLD_IMAGES",
			"eventID", record.EventID,
			"pk", pk,
		)
		return nil
	}
	current, err := guestbook.DecodeEntries(value)
	if err != nil {
		return fmt.Errorf("decode new image of %s: %w", pk, err)
	}

	var previous []guestbook.Entry
	if old, ok := getValueAttr(record.Change.OldImage); ok {
		previous, err = guestbook.DecodeEntries(old)
		if err != nil {
			h.logger.Warn("ignoring undecodable old image",
				"eventID", record.EventID,
				"pk", pk,
				"error", err,
			)
			previous = nil
		}
	}

	if h.reloader != nil {
		h.reloader.Reload(ctx, current)
	}

	added := addedEntries(previous, current)
	for _, e := range added {
		h.logger.Info("guestbook entry added",
			"entryID", e.ID,
			"name", e.Name,
			"parentID", e.Parent(),
			"automated", e.Automated,
		)
		if h.sink != nil {
			h.sink.Notify(ctx, guestbook.Toast(h.announcement(e)))
		}
	}

	h.logger.Info("guestbook change processed",
		"pk", pk,
		"entries", len(current),
		"added", len(added),
	)
	return nil
}

func (h *Handler) secretChanged(ctx context.Context, pk string, record events.DynamoDBEventRecord) error {
	value, ok := getValueAttr(record.Change.NewImage)
	if !ok {
		return nil
	}
	secret, err := guestbook.DecodeSecret(value)
	if err != nil {
		return fmt.Errorf("decode new image of %s: %w", pk, err)
	}
	if h.reloader != nil {
		h.reloader.ApplySecret(ctx, secret)
	}
	h.logger.Info("secret flag changed", "pk", pk, "secret", secret)
	return nil
}

func (h *Handler) announcement(e guestbook.Entry) string {
	if e.Automated {
		return h.config.BotName + " replied"
	}
	if e.IsRoot() {
		return "new guestbook entry from " + e.Name
	}
	return "new reply from " + e.Name
}

// addedEntries returns entries of current whose ID is not in previous, in
// current's order.
func addedEntries(previous, current []guestbook.Entry) []guestbook.Entry {
	seen := make(map[string]bool, len(previous))
	for _, e := range previous {
		seen[e.ID] = true
	}
	var added []guestbook.Entry
	for _, e := range current {
		if !seen[e.ID] {
			added = append(added, e)
		}
	}
	return added
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getValueAttr extracts the stored value of a key-value item. ok is false
// when the image carries no value attribute at all.
func getValueAttr(image map[string]events.DynamoDBAttributeValue) ([]byte, bool) {
	v, ok := image["value"]
	if !ok || v.DataType() != events.DataTypeString {
		return nil, false
	}
	return []byte(v.String()), true
}
