// Package runindex assigns sequence numbers to resolved items. Indices
// are keyed by (destination scope, label set with the run index
// excluded) and are strictly increasing per key for the lifetime of a
// conversion session. An issued index is committed: there is no way to
// hand it back.
package runindex

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/bidsmap/bidsmap/pkg/logging"
)

// Allocator is the run-counter state for one session. Allocations
// within one scope serialize on the scope's lock; different scopes
// allocate in parallel.
type Allocator struct {
	mu     sync.Mutex
	scopes map[string]*scopeState
	logger zerolog.Logger
}

type scopeState struct {
	mu      sync.Mutex
	highest map[string]int
}

// NewAllocator creates an empty allocator. Seed it from the inventory
// of already-produced output before resolving new items.
func NewAllocator() *Allocator {
	return &Allocator{
		scopes: make(map[string]*scopeState),
		logger: logging.GetLogger("runindex"),
	}
}

// scope returns the state for a scope, creating it on first use.
func (a *Allocator) scope(name string) *scopeState {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.scopes[name]
	if !ok {
		s = &scopeState{highest: make(map[string]int)}
		a.scopes[name] = s
	}
	return s
}

// Seed records an index already present in the destination, so new
// allocations never collide with existing output. Lower seeds than the
// recorded highest are ignored.
func (a *Allocator) Seed(scope, partialKey string, index int) {
	s := a.scope(scope)
	s.mu.Lock()
	defer s.mu.Unlock()
	if index > s.highest[partialKey] {
		s.highest[partialKey] = index
	}
}

// Allocate returns the next free index for the scope and partial
// label-set key, starting at 1. Issuance is committed; callers must
// not retry an item with a fresh allocation unless the first one is
// genuinely used.
func (a *Allocator) Allocate(scope, partialKey string) int {
	s := a.scope(scope)
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.highest[partialKey] + 1
	s.highest[partialKey] = index

	a.logger.Debug().
		Str("scope", scope).
		Str("key", partialKey).
		Int("index", index).
		Msg("Allocated run index")

	return index
}

// Highest returns the highest index recorded for the scope and key, 0
// when none exists.
func (a *Allocator) Highest(scope, partialKey string) int {
	s := a.scope(scope)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highest[partialKey]
}
