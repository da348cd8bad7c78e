// Package itemkey composes DynamoDB partition keys for namespaced key-value items.
package itemkey

import "strings"

const separator = "#"

// PK returns the partition key for key within namespace, "namespace#key".
func PK(namespace, key string) string {
	return namespace + separator + key
}

// Split separates a partition key built by PK. The namespace ends at the
// first separator, so keys may themselves contain '#'.
// ok is false when pk has no separator or an empty namespace.
func Split(pk string) (namespace, key string, ok bool) {
	namespace, key, ok = strings.Cut(pk, separator)
	if !ok || namespace == "" {
		return "", "", false
	}
	return namespace, key, true
}

// ValidNamespace reports whether namespace can round-trip through PK and Split.
func ValidNamespace(namespace string) bool {
	return namespace != "" && !strings.Contains(namespace, separator)
}
