// Package types defines the core data model shared by the bidsmap
// resolution engine: attribute snapshots captured from source items,
// the rule catalog they are matched against, and the resolved label
// sets the engine emits.
//
// Everything here is a plain value type. Snapshots and catalogs are
// immutable once built, which is what makes per-item resolution safe
// to run concurrently.
package types
