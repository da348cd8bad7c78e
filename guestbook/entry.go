package guestbook

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a single guestbook post or reply.
//
// The JSON layout matches what the site kept in browser storage, so
// exported data loads without conversion.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"msg"`
	CreatedAt time.Time `json:"at"`

	// ParentID is nil for root entries.
	ParentID *string `json:"parentId"`

	// Automated marks entries written by the trigger logic rather than a visitor.
	Automated bool `json:"nyan,omitempty"`
}

// IsRoot reports whether the entry has no parent reference.
func (e Entry) IsRoot() bool {
	return e.ParentID == nil || *e.ParentID == ""
}

// Parent returns the parent ID, or "" for root entries.
func (e Entry) Parent() string {
	if e.ParentID == nil {
		return ""
	}
	return *e.ParentID
}

func (e Entry) clone() Entry {
	if e.ParentID != nil {
		p := *e.ParentID
		e.ParentID = &p
	}
	return e
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.clone()
	}
	return out
}

// EncodeEntries serializes an entry list for the key-value store.
func EncodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}
	return data, nil
}

// DecodeEntries parses a stored entry list. Empty input yields an empty list.
func DecodeEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

// DecodeSecret parses the stored secret flag, a JSON string.
func DecodeSecret(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}
	return s, nil
}
