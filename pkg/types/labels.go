package types

import (
	"sort"
	"strings"
)

// ResolvedLabelSet is the fully substituted, immutable output of label
// resolution: every entity key mapped to a final literal (possibly
// explicitly empty).
type ResolvedLabelSet struct {
	labels map[string]string
}

// NewResolvedLabelSet builds a label set from a key/value map. The map
// is copied; the result never changes afterwards.
func NewResolvedLabelSet(labels map[string]string) ResolvedLabelSet {
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}
	return ResolvedLabelSet{labels: copied}
}

// Get returns the value for an entity key and whether it is present.
func (s ResolvedLabelSet) Get(key string) (string, bool) {
	v, ok := s.labels[key]
	return v, ok
}

// Value returns the value for an entity key, or "" when absent.
func (s ResolvedLabelSet) Value(key string) string {
	return s.labels[key]
}

// Keys returns the entity keys in sorted order.
func (s ResolvedLabelSet) Keys() []string {
	keys := make([]string, 0, len(s.labels))
	for k := range s.labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entity keys.
func (s ResolvedLabelSet) Len() int {
	return len(s.labels)
}

// Map returns a copy of the underlying key/value map.
func (s ResolvedLabelSet) Map() map[string]string {
	copied := make(map[string]string, len(s.labels))
	for k, v := range s.labels {
		copied[k] = v
	}
	return copied
}

// Canonical renders the label set as a stable "k=v|k=v" string with
// keys sorted, excluding the given keys. The run-index allocator uses
// this, with the run-index entity excluded, as its dedup key.
func (s ResolvedLabelSet) Canonical(exclude ...string) string {
	skip := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		skip[k] = true
	}
	keys := s.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if skip[k] {
			continue
		}
		parts = append(parts, k+"="+s.labels[k])
	}
	return strings.Join(parts, "|")
}
