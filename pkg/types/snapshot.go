package types

import "sort"

// AttributeSnapshot is the set of metadata field values read from one
// source item at matching time. It is owned by the caller and treated
// as read-only by the engine for the duration of one resolution.
type AttributeSnapshot struct {
	fields map[string]string
}

// NewSnapshot builds a snapshot from a field map. The map is copied so
// later caller mutations cannot leak into an in-flight resolution.
func NewSnapshot(fields map[string]string) AttributeSnapshot {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return AttributeSnapshot{fields: copied}
}

// Get returns the value for a field. A missing field reads as the
// empty string, which is also how the matcher treats it.
func (s AttributeSnapshot) Get(field string) string {
	return s.fields[field]
}

// Has reports whether the field was present in the source metadata,
// even if its value is empty.
func (s AttributeSnapshot) Has(field string) bool {
	_, ok := s.fields[field]
	return ok
}

// Fields returns the field names in sorted order.
func (s AttributeSnapshot) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for k := range s.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of captured fields.
func (s AttributeSnapshot) Len() int {
	return len(s.fields)
}

// ContainerInfo describes where a source item was found, for rules
// whose metadata fields alone cannot disambiguate it.
type ContainerInfo struct {
	// Path is the enclosing folder of the item
	Path string

	// Name is the item's own name within the folder
	Name string

	// Size is the item size in bytes
	Size int64

	// SiblingCount is the number of items in the same folder
	SiblingCount int
}
