package store

import "errors"

var (
	// ErrEmptyKey is returned when Get or Set is called with an empty key.
	ErrEmptyKey = errors.New("guestbook store: empty key")

	// ErrValueTooLarge is returned when a value exceeds the DynamoDB item size limit.
	ErrValueTooLarge = errors.New("guestbook store: value too large")
)
