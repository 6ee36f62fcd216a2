// Package codec serializes typed records to and from the byte strings kept
// in the store. All persisted records go through these two functions so the
// on-disk encoding stays in one place.
package codec

import (
	"encoding/json"

	"wikid/pkg/logger"
	"wikid/pkg/wikierr"
)

// Encode renders a record for storage.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, wikierr.Corrupt("codec.encode", err)
	}
	return b, nil
}

// Decode parses a stored record. A failure here means the store holds bytes
// this codebase cannot read, which indicates a serialization-compatibility
// bug; it is logged loudly and surfaced as a Corrupt error.
func Decode(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		logger.Error("record_decode_failed", "key", key, "error", err)
		return wikierr.Corrupt("codec.decode "+key, err)
	}
	return nil
}
