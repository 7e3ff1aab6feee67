// Package report aggregates per-session resolution outcomes into a
// structured validation summary. Every unmatched item is a silent
// data-loss risk unless the fallback category is inspected, so the
// reporter exists to make those visible rather than fatal.
package report

import (
	"sync"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/types"
)

// Issue is one reportable per-item condition.
type Issue struct {
	// Code classifies the condition (UNMATCHED, AMBIGUOUS,
	// UNRESOLVED_REFERENCE, or a load-time code)
	Code errors.ErrorCode

	// Item identifies the source item, as named by the caller
	Item string

	// Dataformat and Category locate the walk that produced the issue
	Dataformat string
	Category   string

	// Message is the human-readable detail
	Message string

	// ConflictingIDs lists the rules that conflicted, for ambiguity
	ConflictingIDs []string
}

// Summary is the structured per-session report.
type Summary struct {
	Items        int
	Matched      int
	Ambiguous    int
	Unmatched    int
	Unresolved   int
	Ignored      int
	LoadFailures int
	Issues       []Issue
}

// Clean reports whether the session saw no reportable conditions.
func (s Summary) Clean() bool {
	return s.Ambiguous == 0 && s.Unmatched == 0 && s.Unresolved == 0 && s.LoadFailures == 0
}

// Reporter collects outcomes from concurrent resolutions. It never
// mutates engine state; it only observes.
type Reporter struct {
	mu sync.Mutex

	items        int
	matched      int
	ambiguous    int
	unmatched    int
	unresolved   int
	ignored      int
	loadFailures int
	issues       []Issue
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// RecordOutcome records a rule-resolver verdict for one item.
func (r *Reporter) RecordOutcome(item string, outcome types.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items++
	switch outcome.Status {
	case types.StatusMatched:
		r.matched++
	case types.StatusAmbiguous:
		r.matched++
		r.ambiguous++
		winner := ""
		if outcome.Rule != nil {
			winner = outcome.Rule.ID
		}
		r.issues = append(r.issues, Issue{
			Code:           errors.ErrAmbiguous,
			Item:           item,
			Dataformat:     outcome.Dataformat,
			Category:       outcome.Category,
			Message:        "first match " + winner + " governs; later rules also matched",
			ConflictingIDs: outcome.ConflictingIDs,
		})
	case types.StatusUnmatched:
		r.unmatched++
		r.issues = append(r.issues, Issue{
			Code:       errors.ErrUnmatched,
			Item:       item,
			Dataformat: outcome.Dataformat,
			Category:   outcome.Category,
			Message:    "no rule matched",
		})
	}
}

// RecordError records a per-item or load-time failure.
func (r *Reporter) RecordError(item string, err error) {
	if err == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code := errors.GetErrorCode(err)
	if errors.IsFatal(err) {
		r.loadFailures++
	} else if code == errors.ErrUnresolvedReference {
		r.unresolved++
	}

	r.issues = append(r.issues, Issue{
		Code:    code,
		Item:    item,
		Message: err.Error(),
	})
}

// RecordIgnored counts an item skipped by the ignore list.
func (r *Reporter) RecordIgnored(item string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ignored++
}

// Summary returns a snapshot of everything recorded so far.
func (r *Reporter) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	issues := make([]Issue, len(r.issues))
	copy(issues, r.issues)

	return Summary{
		Items:        r.items,
		Matched:      r.matched,
		Ambiguous:    r.ambiguous,
		Unmatched:    r.unmatched,
		Unresolved:   r.unresolved,
		Ignored:      r.ignored,
		LoadFailures: r.loadFailures,
		Issues:       issues,
	}
}
