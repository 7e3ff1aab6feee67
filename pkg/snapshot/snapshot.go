// Package snapshot builds attribute snapshots from the header dumps
// metadata extractors emit. The engine itself never touches source
// files; these helpers exist for tooling and tests that start from a
// dump on disk instead of a live extractor.
//
// Three dump shapes are accepted: a flat JSON object, a flat YAML
// mapping, and an XML element tree where each child element is one
// field (the tag is the field name, or a name attribute when present).
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"gopkg.in/yaml.v3"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/types"
)

// LoadFile reads a header dump and builds a snapshot. The format is
// chosen by extension: .xml, .json, or .yaml/.yml.
func LoadFile(path string) (types.AttributeSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.AttributeSnapshot{}, errors.Wrapf(err, errors.ErrSnapshotParse,
			"failed to read snapshot %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return ParseXML(data)
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return types.AttributeSnapshot{}, errors.Newf(errors.ErrSnapshotParse,
			"unsupported snapshot format %q", filepath.Ext(path))
	}
}

// ParseXML builds a snapshot from an XML header dump. Each child of
// the root element contributes one field: the name attribute when
// present, otherwise the tag itself, mapped to the element's text.
func ParseXML(data []byte) (types.AttributeSnapshot, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return types.AttributeSnapshot{}, errors.Wrap(err, errors.ErrSnapshotParse,
			"failed to parse XML snapshot")
	}

	root := doc.Root()
	if root == nil {
		return types.AttributeSnapshot{}, errors.New(errors.ErrSnapshotParse,
			"XML snapshot has no root element")
	}

	fields := make(map[string]string)
	for _, child := range root.ChildElements() {
		name := child.Tag
		if attr := child.SelectAttr("name"); attr != nil && attr.Value != "" {
			name = attr.Value
		}
		fields[name] = strings.TrimSpace(child.Text())
	}

	return types.NewSnapshot(fields), nil
}

// ParseJSON builds a snapshot from a flat JSON object. Non-string
// scalar values are rendered to their literal text.
func ParseJSON(data []byte) (types.AttributeSnapshot, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.AttributeSnapshot{}, errors.Wrap(err, errors.ErrSnapshotParse,
			"failed to parse JSON snapshot")
	}
	return fromRaw(raw)
}

// ParseYAML builds a snapshot from a flat YAML mapping.
func ParseYAML(data []byte) (types.AttributeSnapshot, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return types.AttributeSnapshot{}, errors.Wrap(err, errors.ErrSnapshotParse,
			"failed to parse YAML snapshot")
	}
	return fromRaw(raw)
}

// fromRaw flattens scalar values to strings, rejecting nested
// structures: a snapshot is a flat field map by definition.
func fromRaw(raw map[string]interface{}) (types.AttributeSnapshot, error) {
	fields := make(map[string]string, len(raw))
	for key, val := range raw {
		switch v := val.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = v
		case bool, int, int64, uint64, float64:
			fields[key] = fmt.Sprintf("%v", v)
		case json.Number:
			fields[key] = v.String()
		default:
			return types.AttributeSnapshot{}, errors.Newf(errors.ErrSnapshotParse,
				"field %q has nested value of type %T", key, val)
		}
	}
	return types.NewSnapshot(fields), nil
}
