package store

import "fmt"

// Pebble has no column families, so each keyspace gets a prefix on the one
// database. The key body after the prefix is the compatibility layout:
//
//	users       user:<username>
//	namespaces  nspc:<namespace>
//	pages       page:<namespace>/<slug>
//	history     hist:<namespace>/<slug>/<version>
//	history     hist:<namespace>/<slug>/VERSION
//
// The namespace leads page and history keys so namespace prefix scans are
// cheap. History versions are plain base-10; listings sort by the parsed
// number rather than relying on key order.
const (
	userPrefix = "user:"
	nspcPrefix = "nspc:"
	pagePrefix = "page:"
	histPrefix = "hist:"

	versionSuffix = "VERSION"
)

// UserKey addresses a user record.
func UserKey(name string) string { return userPrefix + name }

// NamespaceKey addresses a namespace record.
func NamespaceKey(name string) string { return nspcPrefix + name }

// PageKey addresses a page record.
func PageKey(namespace, slug string) string {
	return pagePrefix + namespace + "/" + slug
}

// HistoryKey addresses one recorded edit.
func HistoryKey(namespace, slug string, version uint64) string {
	return fmt.Sprintf("%s%s/%s/%d", histPrefix, namespace, slug, version)
}

// HistoryVersionKey addresses the per-page version counter.
func HistoryVersionKey(namespace, slug string) string {
	return histPrefix + namespace + "/" + slug + "/" + versionSuffix
}
