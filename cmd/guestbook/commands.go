package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jacentio/guestbook/guestbook"
	"github.com/jacentio/guestbook/internal/config"
	"github.com/jacentio/guestbook/store"
)

const timeLayout = "2006-01-02 15:04"

var errEmptyMessage = errors.New("message is empty")

// runPost submits one entry, waits for any automated replies it set off and
// prints the new entry's ID.
func runPost(ctx context.Context, book *guestbook.Book, name, message, replyTo string, out io.Writer) error {
	if replyTo != "" {
		if !hasEntry(book, replyTo) {
			return fmt.Errorf("no entry with id %q", replyTo)
		}
		book.SetReplyTarget(replyTo)
		if label, ok := book.ReplyingToName(); ok {
			fmt.Fprintf(out, "replying to %s\n", label)
		}
	}

	e, ok := book.Submit(ctx, name, message)
	if !ok {
		return errEmptyMessage
	}
	book.Wait()

	_, _ = fmt.Fprintln(out, e.ID)
	return nil
}

func hasEntry(book *guestbook.Book, id string) bool {
	for _, e := range book.Entries() {
		if e.ID == id {
			return true
		}
	}
	return false
}

// runThread prints the reply tree, two spaces of indent per level.
func runThread(book *guestbook.Book, out io.Writer) error {
	view := book.BuildThreadView()
	if len(view.Roots) == 0 {
		_, _ = fmt.Fprintln(out, "no entries yet")
		return nil
	}

	view.Walk(func(n *guestbook.Node) {
		indent := strings.Repeat("  ", n.Depth)
		header := n.DisplayName
		if n.ReplyingTo != "" {
			header += " → " + n.ReplyingTo
		}
		_, _ = fmt.Fprintf(out, "%s%s  %s  [%s]\n", indent, header,
			n.Entry.CreatedAt.Local().Format(timeLayout), n.Entry.ID)
		_, _ = fmt.Fprintf(out, "%s  %s\n", indent, n.Entry.Message)
	})
	return nil
}

// runPreview prints up to limit top-level entries, newest first.
func runPreview(book *guestbook.Book, limit int, out io.Writer) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}
	items := book.Preview(limit)
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, "no entries yet")
		return nil
	}
	for _, item := range items {
		_, _ = fmt.Fprintf(out, "%s: %s\n", item.DisplayName, item.Message)
	}
	return nil
}

// runSecrets lists the easter egg hints in evaluation order.
func runSecrets(out io.Writer) error {
	for _, t := range guestbook.Triggers() {
		_, _ = fmt.Fprintf(out, "%-10s %s\n", t.Name, t.Hint)
	}
	return nil
}

// runInitTable creates the DynamoDB table for the dynamodb backend.
func runInitTable(ctx context.Context, cfg *config.Config, maxWait time.Duration, out io.Writer) error {
	if cfg.Backend != config.BackendDynamoDB {
		return fmt.Errorf("init-table needs the dynamodb backend, configured backend is %q", cfg.Backend)
	}
	client, err := newDynamoClient(ctx, cfg)
	if err != nil {
		return err
	}
	kv := store.NewDynamo(client, cfg.Dynamo())
	if err := kv.EnsureTable(ctx, maxWait); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "table %s ready\n", kv.Config().TableName)
	return nil
}
