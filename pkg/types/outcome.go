package types

// OutcomeStatus classifies the result of walking one category's rules.
type OutcomeStatus string

const (
	// StatusMatched means exactly one rule governs the item
	StatusMatched OutcomeStatus = "matched"

	// StatusAmbiguous means the first match governs, but a later,
	// materially different rule also matched
	StatusAmbiguous OutcomeStatus = "ambiguous"

	// StatusUnmatched means no rule in the category matched
	StatusUnmatched OutcomeStatus = "unmatched"
)

// Outcome is the rule resolver's verdict for one item against one
// category.
type Outcome struct {
	// Status of the walk
	Status OutcomeStatus

	// Dataformat and Category the walk ran against
	Dataformat string
	Category   string

	// Rule is the winning (flattened) rule; nil when unmatched
	Rule *RuleDefinition

	// ConflictingIDs lists the provenance IDs of later rules that also
	// matched with materially different label templates
	ConflictingIDs []string
}

// Matched reports whether a winning rule exists (ambiguity included,
// since the first match still governs).
func (o Outcome) Matched() bool {
	return o.Rule != nil
}
