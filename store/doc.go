// Package store provides durable key-value backends for the guestbook.
//
// Every backend implements the guestbook.KV contract: Get returns nil and no
// error for a missing key, Set replaces the stored value. Values are opaque
// bytes; the guestbook writes JSON.
//
// # Backends
//
//   - [Memory] keeps values in a map. Useful for tests and ephemeral runs.
//   - [SQLite] stores values in a single kv table through modernc.org/sqlite.
//   - [Dynamo] stores one DynamoDB item per key, namespaced so several
//     guestbooks can share a table. [Dynamo.EnsureTable] creates the table
//     with a NEW_AND_OLD_IMAGES stream for the change feed in package stream.
//
// # Configuration
//
// Use [DefaultDynamoConfig] for a single guestbook per table:
//
//	cfg := store.DefaultDynamoConfig()
//	cfg.Namespace = "my-site"
//	kv := store.NewDynamo(dynamodb.NewFromConfig(awsCfg), cfg)
//
// # Errors
//
//   - [ErrEmptyKey] - the key is empty
//   - [ErrValueTooLarge] - the value does not fit in a DynamoDB item
package store
