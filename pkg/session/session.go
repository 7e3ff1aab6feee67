// Package session drives resolution of a batch of source items
// against a loaded catalog: category walk, fallback handling, label
// substitution, run-index allocation and report collection.
//
// Items are independent, so a batch fans out over a worker pool. The
// only shared mutable state is the run-index allocator and the
// reporter, both of which synchronize internally.
package session

import (
	"fmt"
	"regexp"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/logging"
	"github.com/bidsmap/bidsmap/pkg/match"
	"github.com/bidsmap/bidsmap/pkg/report"
	"github.com/bidsmap/bidsmap/pkg/resolve"
	"github.com/bidsmap/bidsmap/pkg/runindex"
	"github.com/bidsmap/bidsmap/pkg/types"
)

// Item is one source item to resolve.
type Item struct {
	// Name identifies the item in the report (series folder, file, ...)
	Name string

	// Dataformat selects the catalog section to resolve against
	Dataformat string

	// Snapshot holds the item's metadata fields
	Snapshot types.AttributeSnapshot

	// Container optionally describes where the item was found
	Container *types.ContainerInfo

	// Context carries the destination scope and directory-derived
	// values the caller extracted
	Context resolve.Context
}

// Result is the per-item output of a session.
type Result struct {
	// Item is the name the item was submitted under
	Item string

	// Outcome is the primary walk's verdict. When FellBack is set this
	// is the fallback category's outcome and the primary walk ended
	// unmatched.
	Outcome types.Outcome

	// Labels is the resolved label set; zero when Err is non-nil or
	// the item was ignored
	Labels types.ResolvedLabelSet

	// FellBack marks items no regular category matched
	FellBack bool

	// Ignored marks items skipped by the catalog ignore list
	Ignored bool

	// Err is the per-item failure, if any; always recoverable
	Err error
}

// Session resolves items against one loaded catalog.
type Session struct {
	catalog   *types.Catalog
	resolver  *resolve.Resolver
	allocator *runindex.Allocator
	reporter  *report.Reporter
	ignore    []*regexp.Regexp
	logger    zerolog.Logger
}

// New creates a session for a loaded catalog. The catalog's ignore
// list (options.ignore) is compiled here; a bad ignore pattern fails
// session start the same way a bad rule pattern fails catalog load.
func New(cat *types.Catalog) (*Session, error) {
	s := &Session{
		catalog:   cat,
		resolver:  resolve.NewResolver(match.NewMatcher()),
		allocator: runindex.NewAllocator(),
		reporter:  report.NewReporter(),
		logger:    logging.GetLogger("session"),
	}

	for _, pattern := range ignorePatterns(cat.Options) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrMalformedPattern,
				"ignore pattern %q", pattern)
		}
		s.ignore = append(s.ignore, re)
	}

	return s, nil
}

// ignorePatterns extracts the ignore list from the passthrough options
// block.
func ignorePatterns(options map[string]interface{}) []string {
	raw, ok := options["ignore"].([]interface{})
	if !ok {
		return nil
	}
	patterns := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			patterns = append(patterns, s)
		}
	}
	return patterns
}

// Allocator exposes the session's run-index allocator so callers can
// seed it from an inventory of already-produced output.
func (s *Session) Allocator() *runindex.Allocator {
	return s.allocator
}

// Report returns the validation summary collected so far.
func (s *Session) Report() report.Summary {
	return s.reporter.Summary()
}

// ResolveItem resolves a single item: regular categories in catalog
// order, then the fallback category when none matched. Per-item
// failures are recorded and returned; they never abort a batch.
func (s *Session) ResolveItem(item Item) Result {
	result := Result{Item: item.Name}

	for _, re := range s.ignore {
		if re.MatchString(item.Name) {
			s.reporter.RecordIgnored(item.Name)
			result.Ignored = true
			return result
		}
	}

	df := s.catalog.Dataformat(item.Dataformat)
	if df == nil {
		result.Err = errors.Newf(errors.ErrInvalidInput,
			"catalog has no dataformat %q", item.Dataformat)
		s.reporter.RecordError(item.Name, result.Err)
		return result
	}

	outcome, err := s.walkCategories(df, item)
	if err != nil {
		result.Err = err
		s.reporter.RecordError(item.Name, err)
		return result
	}

	if !outcome.Matched() {
		// The primary walk's verdict is what the report counts; the
		// fallback only guarantees the item stays classifiable.
		s.reporter.RecordOutcome(item.Name, outcome)

		fallback := df.FallbackCategory()
		if fallback == nil {
			result.Outcome = outcome
			return result
		}

		fbOutcome, err := s.resolver.Resolve(df.Name, fallback, item.Snapshot, item.Container)
		if err != nil {
			result.Err = err
			s.reporter.RecordError(item.Name, err)
			return result
		}
		result.FellBack = true
		outcome = fbOutcome
		if !outcome.Matched() {
			result.Outcome = outcome
			return result
		}
	} else {
		s.reporter.RecordOutcome(item.Name, outcome)
	}

	result.Outcome = outcome

	category := df.Category(outcome.Category)
	var required []string
	if category != nil {
		required = category.Required
	}

	labels, err := s.resolver.ResolveLabels(outcome.Rule, item.Snapshot, item.Context, required, s.allocator)
	if err != nil {
		result.Err = err
		s.reporter.RecordError(item.Name, err)
		return result
	}
	result.Labels = labels

	return result
}

// walkCategories resolves against every non-fallback category in
// catalog order and returns the first category's match, or an
// unmatched outcome covering the whole walk.
func (s *Session) walkCategories(df *types.Dataformat, item Item) (types.Outcome, error) {
	for i := range df.Categories {
		category := &df.Categories[i]
		if category.Fallback {
			continue
		}

		outcome, err := s.resolver.Resolve(df.Name, category, item.Snapshot, item.Container)
		if err != nil {
			return outcome, err
		}
		if outcome.Matched() {
			return outcome, nil
		}
	}

	return types.Outcome{
		Status:     types.StatusUnmatched,
		Dataformat: df.Name,
	}, nil
}

// ResolveAll resolves a batch over a bounded worker pool. Results come
// back in input order. workers <= 0 means one worker per CPU.
func (s *Session) ResolveAll(items []Item, workers int) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]Result, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.ResolveItem(items[i])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	s.logger.Info().
		Int("items", len(items)).
		Int("workers", workers).
		Msg("Batch resolution complete")

	return results
}

// String implements fmt.Stringer for logging convenience.
func (r Result) String() string {
	switch {
	case r.Ignored:
		return fmt.Sprintf("%s: ignored", r.Item)
	case r.Err != nil:
		return fmt.Sprintf("%s: %v", r.Item, r.Err)
	case r.FellBack:
		return fmt.Sprintf("%s: fell back to %s", r.Item, r.Outcome.Category)
	default:
		return fmt.Sprintf("%s: %s/%s", r.Item, r.Outcome.Category, r.Outcome.Status)
	}
}
