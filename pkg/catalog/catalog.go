package catalog

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/logging"
	"github.com/bidsmap/bidsmap/pkg/types"
)

// optionsKey is the reserved top-level key for the global options
// block. Every other top-level key names a dataformat.
const optionsKey = "options"

// rawRule mirrors one rule entry of the document before flattening.
type rawRule struct {
	ID         string                    `koanf:"id"`
	Base       string                    `koanf:"base"`
	Attributes map[string]string         `koanf:"attributes"`
	Filesystem types.FilesystemPredicate `koanf:"filesystem"`
	Labels     map[string]interface{}    `koanf:"labels"`
}

// rawCategory mirrors one category entry of the document.
type rawCategory struct {
	Name     string    `koanf:"name"`
	Fallback bool      `koanf:"fallback"`
	Required []string  `koanf:"required"`
	Rules    []rawRule `koanf:"rules"`
}

// rawDataformat mirrors one dataformat section of the document.
type rawDataformat struct {
	Fields     []string           `koanf:"fields"`
	Templates  map[string]rawRule `koanf:"templates"`
	Categories []rawCategory      `koanf:"categories"`
}

// LoadFile loads a catalog document from disk. The parser is chosen by
// file extension: .toml is TOML, everything else is YAML.
func LoadFile(path string) (*types.Catalog, error) {
	k := koanf.New(".")

	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = k.Load(file.Provider(path), toml.Parser())
	} else {
		err = k.Load(file.Provider(path), yaml.Parser())
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCatalogLoad, "failed to parse catalog %s", path)
	}

	return build(k)
}

// LoadBytes loads a YAML catalog document from memory.
func LoadBytes(data []byte) (*types.Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: data}, yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrCatalogLoad, "failed to parse catalog")
	}
	return build(k)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("not implemented")
}

// build converts the parsed document into a flattened, validated
// catalog.
func build(k *koanf.Koanf) (*types.Catalog, error) {
	logger := logging.GetLogger("catalog.loader")

	cat := &types.Catalog{
		Options: k.Cut(optionsKey).Raw(),
	}

	// Top-level keys other than the options block name dataformats.
	// The underlying parse is a map, so sort the names for a stable
	// load order.
	raw := k.Raw()
	names := make([]string, 0, len(raw))
	for name := range raw {
		if name == optionsKey {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var rawDF rawDataformat
		if err := k.Unmarshal(name, &rawDF); err != nil {
			return nil, errors.Wrapf(err, errors.ErrMalformedTemplate,
				"dataformat %s has invalid structure", name)
		}

		df, err := buildDataformat(name, rawDF)
		if err != nil {
			return nil, err
		}
		cat.Dataformats = append(cat.Dataformats, df)

		logger.Debug().
			Str("dataformat", name).
			Int("categories", len(df.Categories)).
			Msg("Loaded dataformat")
	}

	logger.Info().
		Int("dataformats", len(cat.Dataformats)).
		Msg("Catalog loaded")

	return cat, nil
}

// buildDataformat flattens and validates one dataformat section.
func buildDataformat(name string, raw rawDataformat) (types.Dataformat, error) {
	df := types.Dataformat{
		Name:      name,
		Fields:    raw.Fields,
		Templates: make(map[string]types.RuleDefinition, len(raw.Templates)),
	}

	for tname, traw := range raw.Templates {
		rule, err := convertRule(name, tname, traw)
		if err != nil {
			return df, err
		}
		df.Templates[tname] = rule
	}

	seenIDs := make(map[string]string)
	for _, rawCat := range raw.Categories {
		if rawCat.Name == "" {
			return df, errors.Newf(errors.ErrMalformedTemplate,
				"dataformat %s has a category without a name", name)
		}

		cat := types.Category{
			Name:     rawCat.Name,
			Fallback: rawCat.Fallback,
			Required: rawCat.Required,
		}

		for i, rr := range rawCat.Rules {
			if rr.ID == "" {
				rr.ID = fmt.Sprintf("%s-%d", rawCat.Name, i+1)
			}
			if prev, dup := seenIDs[rr.ID]; dup {
				return df, errors.Newf(errors.ErrMalformedTemplate,
					"dataformat %s: rule id %q appears in both %s and %s",
					name, rr.ID, prev, rawCat.Name)
			}
			seenIDs[rr.ID] = rawCat.Name

			rule, err := convertRule(name, rr.ID, rr)
			if err != nil {
				return df, err
			}

			flat, err := flattenRule(rule, df.Templates)
			if err != nil {
				return df, err
			}

			if err := validateRule(df, flat); err != nil {
				return df, err
			}

			cat.Rules = append(cat.Rules, flat)
		}

		df.Categories = append(df.Categories, cat)
	}

	return df, nil
}

// convertRule turns a raw rule entry into the typed model, classifying
// each label value as a scalar or an enumerated list.
func convertRule(dataformat, id string, raw rawRule) (types.RuleDefinition, error) {
	rule := types.RuleDefinition{
		ID:         id,
		Base:       raw.Base,
		Attributes: raw.Attributes,
		Filesystem: raw.Filesystem,
		Labels:     make(types.LabelTemplate, len(raw.Labels)),
	}
	if rule.Attributes == nil {
		rule.Attributes = map[string]string{}
	}

	for key, val := range raw.Labels {
		lv, err := convertLabelValue(val)
		if err != nil {
			return rule, errors.Wrapf(err, errors.ErrMalformedTemplate,
				"dataformat %s: rule %s: label %q", dataformat, id, key)
		}
		rule.Labels[key] = lv
	}

	return rule, nil
}

// convertLabelValue accepts a scalar, nil (explicitly empty), or a
// list of literals (an enumerated editor value).
func convertLabelValue(val interface{}) (types.LabelValue, error) {
	switch v := val.(type) {
	case nil:
		return types.LabelValue{}, nil
	case string:
		return types.LabelValue{Value: v}, nil
	case bool, int, int64, uint64, float64:
		return types.LabelValue{Value: fmt.Sprintf("%v", v)}, nil
	case []interface{}:
		enum := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				enum = append(enum, "")
				continue
			}
			s, ok := item.(string)
			if !ok {
				s = fmt.Sprintf("%v", item)
			}
			enum = append(enum, s)
		}
		return types.LabelValue{Enum: enum}, nil
	default:
		return types.LabelValue{}, fmt.Errorf("unsupported value of type %T", val)
	}
}

// validateRule checks a flattened rule: every pattern must compile and
// every predicate field must be known to the dataformat when it
// declares a field universe.
func validateRule(df types.Dataformat, rule types.RuleDefinition) error {
	known := make(map[string]bool, len(df.Fields))
	for _, f := range df.Fields {
		known[f] = true
	}

	for field, pattern := range rule.Attributes {
		if len(known) > 0 && !known[field] {
			return errors.Newf(errors.ErrMalformedTemplate,
				"dataformat %s: rule %s references unknown field %q",
				df.Name, rule.ID, field)
		}
		if err := checkPattern(pattern); err != nil {
			return errors.Wrapf(err, errors.ErrMalformedPattern,
				"dataformat %s: rule %s: field %q", df.Name, rule.ID, field)
		}
	}

	fs := rule.Filesystem
	for name, pattern := range map[string]string{
		"path":    fs.Path,
		"name":    fs.Name,
		"size":    fs.Size,
		"nrfiles": fs.SiblingCount,
	} {
		if err := checkPattern(pattern); err != nil {
			return errors.Wrapf(err, errors.ErrMalformedPattern,
				"dataformat %s: rule %s: filesystem %s", df.Name, rule.ID, name)
		}
	}

	return nil
}

// checkPattern compiles a predicate pattern. Empty patterns are
// wildcards and always valid.
func checkPattern(pattern string) error {
	if pattern == "" {
		return nil
	}
	_, err := regexp.Compile(pattern)
	return err
}
