package models

// HistoryVersionRecord is the per-page version counter. Key =
// "<namespace>/<slug>/VERSION" in the history keyspace. NextVersion is the
// version the next edit will be recorded under; it only ever grows.
type HistoryVersionRecord struct {
	NextVersion uint64 `json:"next_version"`
}

// Next returns the counter after recording one edit.
func (v HistoryVersionRecord) Next() HistoryVersionRecord {
	return HistoryVersionRecord{NextVersion: v.NextVersion + 1}
}

// HistoryRecord is one recorded edit. Key = "<namespace>/<slug>/<version>"
// where version is the counter value before the bump, so the first edit of
// a page lands at version 0. Delta is a unified diff from the previous
// content to the new content; only forward application is supported.
type HistoryRecord struct {
	Author string `json:"author"`
	Delta  string `json:"delta"`
}

// HistoryEntry pairs a record with the version parsed from its key, for
// newest-first listings.
type HistoryEntry struct {
	Version uint64        `json:"version"`
	Record  HistoryRecord `json:"record"`
}
