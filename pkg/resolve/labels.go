package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/types"
)

// RunIndexKey is the reserved dynamic placeholder name whose
// resolution is deferred to the run-index allocator. Compared
// case-insensitively, so <<runindex>> and <<RUNINDEX>> both defer.
const RunIndexKey = "runindex"

// runIndexSentinel stands in for the deferred run index until the
// allocator is consulted. NUL bytes cannot appear in template text.
const runIndexSentinel = "\x00runindex\x00"

var (
	dynamicRe = regexp.MustCompile(`<<([^<>]+)>>`)
	backRefRe = regexp.MustCompile(`<([^<>]+)>`)
)

// Context carries the caller-supplied inputs one resolution needs:
// the destination scope for run-index allocation and any
// directory-derived values (subject, session, ...) the caller already
// extracted. The engine never parses paths itself.
type Context struct {
	// Scope is the grouping key within which run indices must stay
	// unique and increasing
	Scope string

	// Values resolves dynamic <<key>> placeholders other than the run
	// index
	Values map[string]string
}

// IndexAllocator hands out the next free run index for a scope and a
// canonical partial label set.
type IndexAllocator interface {
	Allocate(scope, partialKey string) int
}

// ResolveLabels substitutes the rule's label template into a concrete
// label set. Required entity keys missing from the template, and
// back-references to fields absent from the snapshot, fail with
// UNRESOLVED_REFERENCE rather than defaulting silently. The allocator
// may be nil when the template carries no run-index placeholder.
func (r *Resolver) ResolveLabels(rule *types.RuleDefinition, snapshot types.AttributeSnapshot, ctx Context, required []string, alloc IndexAllocator) (types.ResolvedLabelSet, error) {
	for _, key := range required {
		if _, ok := rule.Labels[key]; !ok {
			return types.ResolvedLabelSet{}, errors.Newf(errors.ErrUnresolvedReference,
				"rule %s supplies no value for required entity %q", rule.ID, key).
				WithDetail("rule", rule.ID).
				WithDetail("entity", key)
		}
	}

	resolved := make(map[string]string, len(rule.Labels))
	var deferred []string

	for key, lv := range rule.Labels {
		value, hasRunIndex, err := r.resolveValue(rule.ID, key, lv, snapshot, ctx)
		if err != nil {
			return types.ResolvedLabelSet{}, err
		}
		resolved[key] = value
		if hasRunIndex {
			deferred = append(deferred, key)
		}
	}

	if len(deferred) == 0 {
		return types.NewResolvedLabelSet(resolved), nil
	}

	if alloc == nil {
		return types.ResolvedLabelSet{}, errors.Newf(errors.ErrUnresolvedReference,
			"rule %s defers a run index but no allocator is available", rule.ID)
	}

	// The dedup key is the label set with the run-index entities
	// excluded, so allocation happens strictly after everything else
	// is final.
	partial := types.NewResolvedLabelSet(resolved).Canonical(deferred...)
	index := strconv.Itoa(alloc.Allocate(ctx.Scope, partial))
	for _, key := range deferred {
		resolved[key] = strings.ReplaceAll(resolved[key], runIndexSentinel, index)
	}

	return types.NewResolvedLabelSet(resolved), nil
}

// resolveValue produces the final text for one entity, reporting
// whether a run-index placeholder was deferred inside it.
func (r *Resolver) resolveValue(ruleID, key string, lv types.LabelValue, snapshot types.AttributeSnapshot, ctx Context) (string, bool, error) {
	// Enumerated editor values default to the first non-empty literal
	if lv.IsEnum() {
		for _, lit := range lv.Enum {
			if lit != "" {
				return lit, false, nil
			}
		}
		return "", false, nil
	}

	var resolveErr error
	hasRunIndex := false

	// Dynamic <<key>> placeholders first, so their delimiters are not
	// misread as back-references.
	value := dynamicRe.ReplaceAllStringFunc(lv.Value, func(tok string) string {
		name := tok[2 : len(tok)-2]
		if strings.EqualFold(name, RunIndexKey) {
			hasRunIndex = true
			return runIndexSentinel
		}
		if v, ok := ctx.Values[name]; ok {
			return v
		}
		if resolveErr == nil {
			resolveErr = errors.Newf(errors.ErrUnresolvedReference,
				"rule %s: entity %q: no context value for <<%s>>", ruleID, key, name).
				WithDetail("rule", ruleID).
				WithDetail("entity", key).
				WithDetail("placeholder", name)
		}
		return ""
	})
	if resolveErr != nil {
		return "", false, resolveErr
	}

	value = backRefRe.ReplaceAllStringFunc(value, func(tok string) string {
		field := tok[1 : len(tok)-1]
		if snapshot.Has(field) {
			return snapshot.Get(field)
		}
		if resolveErr == nil {
			resolveErr = errors.Newf(errors.ErrUnresolvedReference,
				"rule %s: entity %q: snapshot has no field %q", ruleID, key, field).
				WithDetail("rule", ruleID).
				WithDetail("entity", key).
				WithDetail("field", field)
		}
		return ""
	})
	if resolveErr != nil {
		return "", false, resolveErr
	}

	return value, hasRunIndex, nil
}
