// Package repository implements the usecase ports against the remote
// document store. The store hands back collections as key→record maps
// with no ordering; every repository here decodes them into slices
// sorted by store key so "store-enumeration order" is stable across
// calls.
package repository

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

func sortedKeys(records map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// decodeKeyed unmarshals every record in key order, attaching the
// store key via the setKey callback. A record that fails to decode is
// a corrupt store entry; the whole read fails rather than silently
// dropping it.
func decodeKeyed[T any](records map[string]json.RawMessage, setKey func(*T, string)) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, key := range sortedKeys(records) {
		var rec T
		if err := json.Unmarshal(records[key], &rec); err != nil {
			return nil, errors.Wrapf(err, "failed to decode record %s", key)
		}
		setKey(&rec, key)
		out = append(out, rec)
	}
	return out, nil
}
