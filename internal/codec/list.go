// Package codec converts multi-value fields to and from the flat TEXT
// representation stored in the database.
//
// An absent list is stored as the empty string, never as NULL and never as
// "[]". Decoding the empty string therefore yields an absent (nil) list.
package codec

import (
	"encoding/json"
	"fmt"
)

// Absent is the stored sentinel for a missing list.
const Absent = ""

// EncodeList encodes items for storage. Nil and empty lists both encode to
// the Absent sentinel.
func EncodeList(items []string) (string, error) {
	if len(items) == 0 {
		return Absent, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

// DecodeList decodes a stored list. The Absent sentinel and an encoded
// empty array both decode to nil. Malformed input is returned as an error;
// callers decide whether to be lenient.
func DecodeList(stored string) ([]string, error) {
	if stored == Absent {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(stored), &items); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

// DecodeListLenient decodes a stored list, treating any failure as absent.
// The second return value reports whether the stored value was malformed.
func DecodeListLenient(stored string) ([]string, bool) {
	items, err := DecodeList(stored)
	if err != nil {
		return nil, true
	}
	return items, false
}
