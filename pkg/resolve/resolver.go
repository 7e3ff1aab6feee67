package resolve

import (
	"github.com/rs/zerolog"

	"github.com/bidsmap/bidsmap/pkg/logging"
	"github.com/bidsmap/bidsmap/pkg/match"
	"github.com/bidsmap/bidsmap/pkg/types"
)

// Resolver applies a category's rules to snapshots and resolves the
// winning rule's labels. Safe for concurrent use: all state is
// immutable after construction except the matcher's pattern cache,
// which synchronizes internally.
type Resolver struct {
	matcher *match.Matcher
	logger  zerolog.Logger
}

// NewResolver creates a resolver around the given matcher.
func NewResolver(matcher *match.Matcher) *Resolver {
	return &Resolver{
		matcher: matcher,
		logger:  logging.GetLogger("resolve"),
	}
}

// Resolve walks the category's rules in catalog order and returns the
// outcome for the snapshot. A category with no rules at all is always
// unmatched, deferring to the fallback category.
func (r *Resolver) Resolve(dataformat string, category *types.Category, snapshot types.AttributeSnapshot, container *types.ContainerInfo) (types.Outcome, error) {
	outcome := types.Outcome{
		Status:     types.StatusUnmatched,
		Dataformat: dataformat,
		Category:   category.Name,
	}

	for i := range category.Rules {
		rule := &category.Rules[i]

		ok, err := r.matcher.Matches(*rule, snapshot, container)
		if err != nil {
			return outcome, err
		}
		if !ok {
			continue
		}

		if outcome.Rule == nil {
			outcome.Rule = rule
			outcome.Status = types.StatusMatched
			r.logger.Debug().
				Str("category", category.Name).
				Str("rule", rule.ID).
				Msg("Rule matched")
			continue
		}

		// A later match only matters when its labels are materially
		// different from the winner's.
		if !rule.Labels.Equal(outcome.Rule.Labels) {
			outcome.Status = types.StatusAmbiguous
			outcome.ConflictingIDs = append(outcome.ConflictingIDs, rule.ID)
			r.logger.Warn().
				Str("category", category.Name).
				Str("winner", outcome.Rule.ID).
				Str("conflicting", rule.ID).
				Msg("Later rule also matches with different labels")
		}
	}

	return outcome, nil
}
