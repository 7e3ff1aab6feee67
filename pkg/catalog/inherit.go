package catalog

import (
	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/types"
)

// flattenRule applies base-then-override merging until the rule no
// longer references a base template. Override wins when both define
// the same key; a key absent from the child is inherited, not unset.
func flattenRule(rule types.RuleDefinition, templates map[string]types.RuleDefinition) (types.RuleDefinition, error) {
	visited := map[string]bool{}

	current := rule.Clone()
	for current.Base != "" {
		baseName := current.Base
		if visited[baseName] {
			return current, errors.Newf(errors.ErrCyclicTemplate,
				"template %q is part of an inheritance cycle", baseName)
		}
		visited[baseName] = true

		base, ok := templates[baseName]
		if !ok {
			return current, errors.Newf(errors.ErrMalformedTemplate,
				"rule %s references unknown base template %q", rule.ID, baseName)
		}

		current = mergeRules(base, current)
	}

	return current, nil
}

// mergeRules copies the base and applies the child's field-level
// overrides on top. The result carries the base's own Base reference,
// so chained inheritance keeps flattening in the caller's loop.
func mergeRules(base, child types.RuleDefinition) types.RuleDefinition {
	merged := base.Clone()
	merged.ID = child.ID
	merged.Base = base.Base

	for field, pattern := range child.Attributes {
		merged.Attributes[field] = pattern
	}

	if child.Filesystem.Path != "" {
		merged.Filesystem.Path = child.Filesystem.Path
	}
	if child.Filesystem.Name != "" {
		merged.Filesystem.Name = child.Filesystem.Name
	}
	if child.Filesystem.Size != "" {
		merged.Filesystem.Size = child.Filesystem.Size
	}
	if child.Filesystem.SiblingCount != "" {
		merged.Filesystem.SiblingCount = child.Filesystem.SiblingCount
	}

	for key, val := range child.Labels {
		merged.Labels[key] = val
	}

	return merged
}
