package store

import (
	"strings"

	"github.com/jacentio/guestbook/internal/itemkey"
)

// DynamoConfig holds configuration for the DynamoDB backend.
type DynamoConfig struct {
	// TableName is the name of the key-value table.
	// Default: "guestbook_kv"
	TableName string

	// Namespace prefixes every partition key, so several guestbooks can
	// share one table. A '#' is replaced with '-'.
	// Default: "default"
	Namespace string
}

// DefaultDynamoConfig returns defaults for a single guestbook per table.
func DefaultDynamoConfig() DynamoConfig {
	return DynamoConfig{
		TableName: "guestbook_kv",
		Namespace: "default",
	}
}

// validate fills zero values with defaults.
func (c *DynamoConfig) validate() {
	if c.TableName == "" {
		c.TableName = "guestbook_kv"
	}
	if c.Namespace == "" {
		c.Namespace = "default"
	}
	if !itemkey.ValidNamespace(c.Namespace) {
		c.Namespace = strings.ReplaceAll(c.Namespace, "#", "-")
	}
}
