// Package resolve walks a category's ordered rules to find the one
// that governs an item, then substitutes the winning rule's label
// template into a concrete label set.
//
// Rule order is a deliberate priority: the first matching rule wins.
// A later rule that also matches with a materially different label
// template flags the outcome as ambiguous — the first match still
// governs, the conflict is reported for catalog tuning.
//
// Placeholders resolve in a fixed order: back-references against the
// snapshot, then caller-supplied context values, then enumerated
// defaults, and the deferred run index last, because the allocator's
// dedup key is the label set with the run index excluded.
package resolve
