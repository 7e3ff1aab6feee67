// Package match evaluates one rule's predicate against an attribute
// snapshot and, optionally, the item's container properties.
//
// Predicate semantics mirror free-form heuristic authoring: a pattern
// is a substring regular expression (inline flags such as (?i) are
// honored), an absent or empty pattern is a wildcard, and a missing
// snapshot field matches as the empty string.
package match

import (
	"regexp"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/logging"
	"github.com/bidsmap/bidsmap/pkg/types"
)

// regexCacheSize bounds the compiled-pattern cache. Catalogs rarely
// carry more than a few hundred distinct patterns.
const regexCacheSize = 512

// Matcher evaluates rule predicates. It is safe for concurrent use;
// the only shared state is the compiled-pattern cache.
type Matcher struct {
	cache  *lru.Cache[string, *regexp.Regexp]
	logger zerolog.Logger
}

// NewMatcher creates a matcher with a fresh pattern cache.
func NewMatcher() *Matcher {
	cache, _ := lru.New[string, *regexp.Regexp](regexCacheSize)
	return &Matcher{
		cache:  cache,
		logger: logging.GetLogger("match"),
	}
}

// Matches reports whether the rule's predicate holds for the snapshot.
// The container may be nil, in which case filesystem patterns are
// matched against empty values, the same way missing snapshot fields
// are. A non-compilable pattern fails with MALFORMED_PATTERN; catalog
// loading validates patterns up front, so hitting this here means the
// rule bypassed the loader.
func (m *Matcher) Matches(rule types.RuleDefinition, snapshot types.AttributeSnapshot, container *types.ContainerInfo) (bool, error) {
	for field, pattern := range rule.Attributes {
		ok, err := m.matchValue(pattern, snapshot.Get(field))
		if err != nil {
			return false, errors.Wrapf(err, errors.ErrMalformedPattern,
				"rule %s: field %q", rule.ID, field)
		}
		if !ok {
			return false, nil
		}
	}

	if rule.Filesystem.IsZero() {
		return true, nil
	}

	var info types.ContainerInfo
	if container != nil {
		info = *container
	}

	checks := []struct {
		name    string
		pattern string
		value   string
	}{
		{"path", rule.Filesystem.Path, info.Path},
		{"name", rule.Filesystem.Name, info.Name},
		{"size", rule.Filesystem.Size, strconv.FormatInt(info.Size, 10)},
		{"nrfiles", rule.Filesystem.SiblingCount, strconv.Itoa(info.SiblingCount)},
	}
	for _, c := range checks {
		ok, err := m.matchValue(c.pattern, c.value)
		if err != nil {
			return false, errors.Wrapf(err, errors.ErrMalformedPattern,
				"rule %s: filesystem %s", rule.ID, c.name)
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// matchValue applies one pattern to one value. Empty patterns are
// wildcards.
func (m *Matcher) matchValue(pattern, value string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	re, err := m.compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}

// compile returns a compiled pattern, reusing cache hits across
// concurrent resolutions.
func (m *Matcher) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := m.cache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	m.cache.Add(pattern, re)
	return re, nil
}
