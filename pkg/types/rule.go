package types

// FilesystemPredicate matches properties of the item's container when
// metadata fields alone are insufficient to disambiguate. Each field
// is a regex pattern; an empty pattern matches anything. Size and
// SiblingCount are matched against their decimal rendering, mirroring
// how the attribute patterns are authored.
type FilesystemPredicate struct {
	// Path pattern over the enclosing folder
	Path string `koanf:"path"`

	// Name pattern over the item's own name
	Name string `koanf:"name"`

	// Size pattern over the item size in bytes
	Size string `koanf:"size"`

	// SiblingCount pattern over the number of items in the folder
	SiblingCount string `koanf:"nrfiles"`
}

// IsZero reports whether the predicate constrains nothing.
func (p FilesystemPredicate) IsZero() bool {
	return p.Path == "" && p.Name == "" && p.Size == "" && p.SiblingCount == ""
}

// LabelValue is one entity value in a label template. A scalar Value
// may be a literal, an explicitly empty string, or contain
// placeholders (back-references and dynamic keys). An Enum lists the
// literals an interactive editor offers; at resolution time the first
// non-empty one is the default.
type LabelValue struct {
	Value string
	Enum  []string
}

// IsEnum reports whether the value is an enumerated set of literals.
func (v LabelValue) IsEnum() bool {
	return v.Enum != nil
}

// Equal reports whether two label values are textually identical.
func (v LabelValue) Equal(other LabelValue) bool {
	if v.IsEnum() != other.IsEnum() {
		return false
	}
	if !v.IsEnum() {
		return v.Value == other.Value
	}
	if len(v.Enum) != len(other.Enum) {
		return false
	}
	for i := range v.Enum {
		if v.Enum[i] != other.Enum[i] {
			return false
		}
	}
	return true
}

// LabelTemplate maps entity keys (acq, ce, run, suffix, ...) to label
// values. Absence of a key means "inherit" during template merging,
// not "unset".
type LabelTemplate map[string]LabelValue

// Clone returns a deep copy of the template.
func (t LabelTemplate) Clone() LabelTemplate {
	copied := make(LabelTemplate, len(t))
	for k, v := range t {
		if v.Enum != nil {
			enum := make([]string, len(v.Enum))
			copy(enum, v.Enum)
			v.Enum = enum
		}
		copied[k] = v
	}
	return copied
}

// Equal reports whether two templates define the same entity keys with
// textually identical values. Used to decide whether a second matching
// rule is materially different from the winner.
func (t LabelTemplate) Equal(other LabelTemplate) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// RuleDefinition is one ordered element of a category's catalog.
type RuleDefinition struct {
	// ID is the rule's provenance key, unique within its dataformat
	ID string

	// Base names the template this rule inherits from, if any
	Base string

	// Attributes maps snapshot field names to regex-or-literal
	// patterns. An absent or empty pattern matches anything.
	Attributes map[string]string

	// Filesystem holds the optional container predicate
	Filesystem FilesystemPredicate

	// Labels is the rule's label template
	Labels LabelTemplate
}

// Clone returns a deep copy of the rule.
func (r RuleDefinition) Clone() RuleDefinition {
	attrs := make(map[string]string, len(r.Attributes))
	for k, v := range r.Attributes {
		attrs[k] = v
	}
	return RuleDefinition{
		ID:         r.ID,
		Base:       r.Base,
		Attributes: attrs,
		Filesystem: r.Filesystem,
		Labels:     r.Labels.Clone(),
	}
}

// Category is a named bucket of rule definitions. Rule order is a
// deliberate priority: the first match wins.
type Category struct {
	// Name of the category (anat, func, extra_data, ...)
	Name string

	// Fallback marks this as the catch-all bucket consulted when no
	// other category matches
	Fallback bool

	// Required lists entity keys every resolved label set for this
	// category must supply
	Required []string

	// Rules in catalog order
	Rules []RuleDefinition
}

// Dataformat groups the categories and named base templates for one
// source format.
type Dataformat struct {
	// Name of the source format (DICOM, PAR, ...)
	Name string

	// Fields optionally declares the known snapshot field names for
	// this format. When non-empty, flattened predicates may reference
	// only these.
	Fields []string

	// Templates holds the named base templates rules may inherit from
	Templates map[string]RuleDefinition

	// Categories in catalog order
	Categories []Category
}

// Category returns the named category, or nil.
func (d *Dataformat) Category(name string) *Category {
	for i := range d.Categories {
		if d.Categories[i].Name == name {
			return &d.Categories[i]
		}
	}
	return nil
}

// FallbackCategory returns the category flagged as fallback, or nil.
func (d *Dataformat) FallbackCategory() *Category {
	for i := range d.Categories {
		if d.Categories[i].Fallback {
			return &d.Categories[i]
		}
	}
	return nil
}

// Catalog is a fully loaded and flattened catalog document.
type Catalog struct {
	// Options is the global options block (format version, ignore
	// list, plugin configuration), passed through unchanged.
	Options map[string]interface{}

	// Dataformats in load order (sorted by name, since the document
	// keys them by name)
	Dataformats []Dataformat
}

// Dataformat returns the named dataformat, or nil.
func (c *Catalog) Dataformat(name string) *Dataformat {
	for i := range c.Dataformats {
		if c.Dataformats[i].Name == name {
			return &c.Dataformats[i]
		}
	}
	return nil
}
